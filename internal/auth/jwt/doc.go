// Package jwt issues and verifies the gateway's HS256 session tokens.
//
// Tokens carry the user id in "sub" together with "iat" and "exp":
//
//	signer, err := jwt.NewSigner(secret)
//	if err != nil {
//	    return err
//	}
//	token, err := signer.Issue(userID)
//
//	validator, err := jwt.NewValidator(secret)
//	claims, err := validator.Validate(token)
//
// Validation errors are sentinel values so callers can tell an expired
// token from a forged one without parsing messages.
package jwt
