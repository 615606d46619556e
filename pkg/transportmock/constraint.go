package transportmock

import (
	"fmt"

	"github.com/PaesslerAG/jsonpath"

	"github.com/multimock/multimock/pkg/multimock"
)

const fmtLen = "_length_"

// checkConstraint evaluates one constraint against a request document. The
// special format "_length_" asserts the length of an array at the path;
// anything else formats the expected values and compares the rendered
// strings.
func checkConstraint(c multimock.Constraint, document map[string]interface{}) error {
	actual, err := jsonpath.Get(c.Path, document)
	if err != nil {
		return fmt.Errorf("unable to evaluate constraint path %q: %s", c.Path, err)
	}

	if c.Format == fmtLen {
		if len(c.Values) != 1 {
			return fmt.Errorf(
				"expected single positive integer value for path %q length constraint, but there are %v expected values",
				c.Path, len(c.Values))
		}
		expected, ok := c.Values[0].(int)
		if !ok || expected < 0 {
			return fmt.Errorf("expected value for %q length constraint must be a positive integer", c.Path)
		}

		actualSlice, ok := actual.([]interface{})
		if !ok {
			return fmt.Errorf("value at path %q must be an array due to length constraint", c.Path)
		}
		if expected != len(actualSlice) {
			return fmt.Errorf("value of length %v at path %q does not match length constraint %v",
				len(actualSlice), c.Path, expected)
		}
		return nil
	}

	format := c.Format
	if format == "" {
		format = "%v"
	}
	expected := fmt.Sprintf(format, c.Values...)
	rendered := fmt.Sprintf("%v", actual)
	if expected != rendered {
		return fmt.Errorf("value %q at path %q does not match constraint %q", rendered, c.Path, expected)
	}
	return nil
}
