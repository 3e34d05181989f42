package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultStart is the clock start when a scenario does not set one.
const DefaultStart = int64(1_750_000_000)

// Scenario is a replayable script: who holds what, who may create campaigns and the
// ordered list of calls to run.
type Scenario struct {
	Name  string `yaml:"name" toml:"name"`
	Start int64  `yaml:"start" toml:"start"`
	// Accounts maps an address to its opening balance in the default asset.
	Accounts map[string]string `yaml:"accounts" toml:"accounts"`
	Admins   []string          `yaml:"admins" toml:"admins"`
	Creators []string          `yaml:"creators" toml:"creators"`
	Steps    []Step            `yaml:"steps" toml:"steps"`
}

// Step is one call. Only the fields its action reads need to be set.
// Example payload (yaml):
//
//	- action: vote
//	  as: hive:alice
//	  proposal: 1
//	  support: true
type Step struct {
	Action    string `yaml:"action" toml:"action"`
	As        string `yaml:"as" toml:"as"`
	Campaign  uint64 `yaml:"campaign" toml:"campaign"`
	Milestone uint32 `yaml:"milestone" toml:"milestone"`
	Proposal  uint64 `yaml:"proposal" toml:"proposal"`
	Amount    string `yaml:"amount" toml:"amount"`
	Support   bool   `yaml:"support" toml:"support"`
	// Text is the title, rejection reason, report or donation message.
	Text        string          `yaml:"text" toml:"text"`
	Description string          `yaml:"description" toml:"description"`
	Beneficiary string          `yaml:"beneficiary" toml:"beneficiary"`
	Milestones  []MilestoneSpec `yaml:"milestones" toml:"milestones"`
	Minutes     uint32          `yaml:"minutes" toml:"minutes"`
	Seconds     int64           `yaml:"seconds" toml:"seconds"`
	ExpectError string          `yaml:"expect_error" toml:"expect_error"`
}

type MilestoneSpec struct {
	Title       string `yaml:"title" toml:"title"`
	Description string `yaml:"description" toml:"description"`
	Target      string `yaml:"target" toml:"target"`
}

// Load reads a scenario, picking the decoder by file extension.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Parse decodes yaml (yaml, yml) or toml.
func Parse(data []byte, format string) (*Scenario, error) {
	sc := &Scenario{}
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(sc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case "toml":
		md, err := toml.Decode(string(data), sc)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		if un := md.Undecoded(); len(un) > 0 {
			return nil, fmt.Errorf("decode toml: unknown key %s", un[0])
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", format)
	}
	if sc.Start == 0 {
		sc.Start = DefaultStart
	}
	for i, st := range sc.Steps {
		if _, ok := actions[st.Action]; !ok {
			return nil, fmt.Errorf("step %d: unknown action %q", i+1, st.Action)
		}
	}
	return sc, nil
}
