package services

import (
	"fmt"
	"math/rand/v2"
)

// CaptchaService produces small arithmetic questions for the sign-up form.
// It is safe for concurrent use.
type CaptchaService struct{}

func NewCaptchaService() *CaptchaService {
	return &CaptchaService{}
}

// GenerateMathProblem returns a display string (e.g. "3 + 5") and the integer answer.
// The answer is kept in the session until the form is submitted.
func (s *CaptchaService) GenerateMathProblem() (string, int) {
	a := rand.IntN(10)
	b := rand.IntN(10)

	if rand.IntN(2) == 0 {
		return fmt.Sprintf("%d + %d", a, b), a + b
	}
	// keep the difference non-negative
	if a < b {
		a, b = b, a
	}
	return fmt.Sprintf("%d - %d", a, b), a - b
}
