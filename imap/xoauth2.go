package imap

import "encoding/base64"

// BuildXOAuth2Token builds the AUTHENTICATE XOAUTH2 SASL initial
// response, base64("user=" + user + "\x01" + "auth=Bearer " + token +
// "\x01\x01").
func BuildXOAuth2Token(user, token string) string {
	raw := "user=" + user + "\x01auth=Bearer " + token + "\x01\x01"
	return base64.StdEncoding.EncodeToString([]byte(raw))
}
