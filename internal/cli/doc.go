// Package cli implements captchactl, the operator command line for the
// captcha store: migrations, client registration and the captcha and token
// lifecycle. Store commands print one JSON document on success; failures
// are printed as {"error": ..., "kind": ..., "reason": ...} and mapped to an
// exit code. Reason is set for rejections only.
package cli
