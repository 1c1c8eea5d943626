package lowering

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ContractMode selects which contract clauses survive lowering.
type ContractMode int

const (
	// ContractsAll keeps preconditions and postconditions.
	ContractsAll ContractMode = iota
	// ContractsPreconditions keeps preconditions only.
	ContractsPreconditions
	// ContractsNone strips every contract clause.
	ContractsNone
)

func (m ContractMode) String() string {
	switch m {
	case ContractsAll:
		return "all"
	case ContractsPreconditions:
		return "preconditions"
	case ContractsNone:
		return "none"
	}
	return fmt.Sprintf("ContractMode(%d)", int(m))
}

func (m *ContractMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "all", "":
		*m = ContractsAll
	case "preconditions":
		*m = ContractsPreconditions
	case "none":
		*m = ContractsNone
	default:
		return fmt.Errorf("unknown contract mode %q", s)
	}
	return nil
}

// OverflowMode selects how lowered integer arithmetic treats overflow.
type OverflowMode int

const (
	// OverflowTrap marks integer arithmetic as checked.
	OverflowTrap OverflowMode = iota
	// OverflowWrap lets integer arithmetic wrap silently.
	OverflowWrap
)

func (m OverflowMode) String() string {
	switch m {
	case OverflowTrap:
		return "trap"
	case OverflowWrap:
		return "wrap"
	}
	return fmt.Sprintf("OverflowMode(%d)", int(m))
}

func (m *OverflowMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "trap", "":
		*m = OverflowTrap
	case "wrap":
		*m = OverflowWrap
	default:
		return fmt.Errorf("unknown overflow mode %q", s)
	}
	return nil
}

// Options configures one lowering run. The chosen modes are baked into
// the emitted form; they are not revisited at execution time.
type Options struct {
	Contracts ContractMode `yaml:"contracts"`
	Overflow  OverflowMode `yaml:"overflow"`
}

// DefaultOptions keeps all contracts and traps on integer overflow.
func DefaultOptions() Options {
	return Options{Contracts: ContractsAll, Overflow: OverflowTrap}
}

// LoadOptions reads options from a YAML file. A missing file yields the
// defaults; a malformed one is an error.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, fmt.Errorf("read options: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse options %s: %v", path, err)
	}
	return opts, nil
}
