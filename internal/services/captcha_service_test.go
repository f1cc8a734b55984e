package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func checkProblem(t *testing.T, question string, answer int) {
	var a, b int
	var op string
	_, err := fmt.Sscanf(question, "%d %s %d", &a, &op, &b)
	if !assert.NoError(t, err, question) {
		return
	}

	switch op {
	case "+":
		assert.Equal(t, a+b, answer)
	case "-":
		assert.Equal(t, a-b, answer)
		assert.GreaterOrEqual(t, answer, 0)
	default:
		assert.Failf(t, "unexpected operator", "%q", question)
	}
}

func TestGenerateMathProblem(t *testing.T) {
	s := NewCaptchaService()
	for i := 0; i < 100; i++ {
		question, answer := s.GenerateMathProblem()
		checkProblem(t, question, answer)
	}
}

// Run with -race: one service is shared by all registration requests.
func TestGenerateMathProblem_Concurrent(t *testing.T) {
	s := NewCaptchaService()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				question, answer := s.GenerateMathProblem()
				checkProblem(t, question, answer)
			}
		}()
	}
	wg.Wait()
}
