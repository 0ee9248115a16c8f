package models

// CheckResult is the verdict of comparing an answer with a captcha.
// Error is empty iff Success is true.
type CheckResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WrongAnswer is reported when the answer has the right length but
// different content.
const WrongAnswer = "Wrong answer"
