package validate

import "fmt"

const (
	maxUsernameLen = 64
	maxQuestionLen = 2000
)

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// Username checks the (already trimmed) username field of an ask request.
func Username(v string) error {
	if err := NonEmpty("username", v); err != nil {
		return err
	}
	if len(v) > maxUsernameLen {
		return fmt.Errorf("username exceeds %d characters", maxUsernameLen)
	}
	return nil
}

// Question checks the (already trimmed) question field of an ask request.
func Question(v string) error {
	if err := NonEmpty("question", v); err != nil {
		return err
	}
	if len(v) > maxQuestionLen {
		return fmt.Errorf("question exceeds %d characters", maxQuestionLen)
	}
	return nil
}
