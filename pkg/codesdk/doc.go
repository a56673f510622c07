/*
Package codesdk provides a client SDK for the codegate access-code service.

# Overview

codegate hands out single-use access codes. A code is exchanged exactly once
for a signed session token, which the holder then presents as a bearer token.

	client := codesdk.NewClient("https://codes.example.com")

	// Exchange a code for a session token
	claim, err := client.Claim(ctx, "482913", "client-77")

	// Ask the service who the token belongs to
	session, err := client.Session(ctx, claim.Token)

Operators generate codes with the admin token configured on the server:

	client.AdminToken = os.Getenv("CODEGATE_ADMIN_TOKEN")
	batch, err := client.Generate(ctx, codesdk.GenerateRequest{Count: 50, Prefix: "EVT-"})

# Errors

Every non-2xx response is returned as an *APIError carrying the HTTP status
and the error code from the response body. Use errors.As to inspect it:

	var apiErr *codesdk.APIError
	if errors.As(err, &apiErr) && apiErr.Retryable() {
		// back off and try again
	}

The service deliberately answers unknown codes and already used codes with
the same 401, so callers cannot tell them apart. IsInvalidCode reports that case.
*/
package codesdk
