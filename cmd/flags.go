package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// choiceValue is a string flag restricted to a fixed set of values. An
// unknown value is rejected while the command line is parsed.
type choiceValue struct {
	target  *string
	choices []string
}

var _ pflag.Value = (*choiceValue)(nil)

func newChoiceValue(target *string, def string, choices ...string) *choiceValue {
	*target = def
	return &choiceValue{target: target, choices: choices}
}

func (c *choiceValue) String() string {
	if c.target == nil {
		return ""
	}
	return *c.target
}

func (c *choiceValue) Set(val string) error {
	for _, choice := range c.choices {
		if val == choice {
			*c.target = val
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(c.choices, ", "))
}

func (c *choiceValue) Type() string {
	return "string"
}

// choiceFlag registers a choice flag on fs.
func choiceFlag(fs *pflag.FlagSet, target *string, name, shorthand, def, usage string, choices ...string) {
	usage = fmt.Sprintf("%s (%s)", usage, strings.Join(choices, ", "))
	fs.VarP(newChoiceValue(target, def, choices...), name, shorthand, usage)
}
