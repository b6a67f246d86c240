package optimize

import "strings"

// ErrorSet defines a list of one or more errors and is itself an error.
type ErrorSet []error

func (e ErrorSet) Len() int {
	return len(e)
}

func (e *ErrorSet) Append(args ...error) {
	*e = append(*e, args...)
}

func (e ErrorSet) Error() string {
	var sb strings.Builder
	for i, err := range e {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}
