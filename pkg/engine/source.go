package engine

import (
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadPlanFile reads a services source: either a bare list of
// {description, command, terminal} entries or an object {port, services}.
// JSON is accepted as well as YAML, and a .toml file is read as TOML with a
// [[services]] table. "-" reads from stdin.
func LoadPlanFile(path string, stdin io.Reader) (LaunchPlan, error) {
	var b []byte
	var err error
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return LaunchPlan{}, errors.Wrap(err, "read services source")
	}
	if filepath.Ext(path) == ".toml" {
		return ParsePlanTOML(b)
	}
	return ParsePlan(b)
}

func ParsePlanTOML(b []byte) (LaunchPlan, error) {
	var plan LaunchPlan
	if err := toml.Unmarshal(b, &plan); err != nil {
		return LaunchPlan{}, errors.Wrap(err, "parse services source")
	}
	return validatePlan(plan)
}

func ParsePlan(b []byte) (LaunchPlan, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return LaunchPlan{}, errors.Wrap(err, "parse services source")
	}
	if len(node.Content) == 0 {
		return LaunchPlan{Services: []PlannedService{}}, nil
	}

	var plan LaunchPlan
	doc := node.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&plan.Services); err != nil {
			return LaunchPlan{}, errors.Wrap(err, "decode services list")
		}
	case yaml.MappingNode:
		if err := doc.Decode(&plan); err != nil {
			return LaunchPlan{}, errors.Wrap(err, "decode launch plan")
		}
	default:
		return LaunchPlan{}, errors.New("services source must be a list or an object")
	}

	return validatePlan(plan)
}

func validatePlan(plan LaunchPlan) (LaunchPlan, error) {
	if plan.Services == nil {
		plan.Services = []PlannedService{}
	}
	for i, svc := range plan.Services {
		if svc.Command == "" {
			return LaunchPlan{}, errors.Errorf("service %d (%q) has no command", i+1, svc.Description)
		}
	}
	return plan, nil
}
