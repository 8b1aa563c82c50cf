// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides caller identity and token utilities.

# Identity Tokens

Voters and admins authenticate with the external identity provider, which
issues HS256 tokens. TokenVerifier checks them and resolves the voter ID:

	v := auth.NewTokenVerifier(secret, requireVoterID)
	id, err := v.Verify(bearer)

With requireVoterID set, voter tokens must carry a student_id claim. The
optional eligible claim defaults to true.

# Admin Keys

Admin keys use HMAC-SHA256 over the election ID:

	adminKey := auth.GenerateAdminKey(electionID, salt)
	err := auth.ValidateAdminKey(electionID, adminKey, salt)

Since the key is deterministic it never needs to be stored.

# Receipt Codes

GenerateConfirmationCode derives a short base62 code from a receipt token so
voters can read their confirmation back over the phone or on paper.

# IP Hashing

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256; stored on receipts.
*/
package auth
