// Package outreach runs the attorney referral email sequences.
package outreach

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Step is one email in a sequence. WaitDays is the delay before the
// step after this one becomes due.
type Step struct {
	Subject  string `yaml:"subject"`
	Template string `yaml:"template"`
	WaitDays int    `yaml:"wait_days"`
}

// Sequence is an ordered outreach email series.
type Sequence struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// defaultSequenceYAML is the built-in attorney introduction series used
// when no sequence file is configured.
const defaultSequenceYAML = `
name: attorney-intro
steps:
  - subject: "Referrals for {{.Company}}"
    wait_days: 3
    template: |
      <p>Hi {{.FirstName}},</p>
      <p>We run a members-only matchmaking service, and our members regularly ask us
      for attorney referrals in family and estate matters. We'd love to add
      {{.Company}} to our referral list.</p>
      <p>Would you be open to a short call?</p>
      <img src="{{.OpenPixelURL}}" width="1" height="1" alt="">
  - subject: "Quick follow-up on referrals"
    wait_days: 4
    template: |
      <p>Hi {{.FirstName}},</p>
      <p>Following up on my note about sending client referrals to {{.Company}}.
      Here's a one-pager on how our referral program works:
      <a href="{{.ClickURL}}">referral program overview</a>.</p>
      <img src="{{.OpenPixelURL}}" width="1" height="1" alt="">
  - subject: "Last note from IntroAlignment"
    wait_days: 0
    template: |
      <p>Hi {{.FirstName}},</p>
      <p>I'll close the loop here. If referrals ever become interesting for
      {{.Company}}, just reply to this email.</p>
      <img src="{{.OpenPixelURL}}" width="1" height="1" alt="">
`

// LoadSequence reads a sequence from a YAML file, falling back to the
// built-in series when path is empty.
func LoadSequence(path string) (*Sequence, error) {
	raw := []byte(defaultSequenceYAML)
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "outreach: read sequence %s", path)
		}
	}

	var seq Sequence
	if err := yaml.Unmarshal(raw, &seq); err != nil {
		return nil, eris.Wrap(err, "outreach: parse sequence")
	}
	if err := seq.Validate(); err != nil {
		return nil, err
	}
	return &seq, nil
}

// Validate checks the sequence is usable.
func (s *Sequence) Validate() error {
	if s.Name == "" {
		return eris.New("outreach: sequence has no name")
	}
	if len(s.Steps) == 0 {
		return eris.New("outreach: sequence has no steps")
	}
	for i, step := range s.Steps {
		if step.Subject == "" {
			return eris.Errorf("outreach: step %d has no subject", i)
		}
		if step.Template == "" {
			return eris.Errorf("outreach: step %d has no template", i)
		}
		if step.WaitDays < 0 {
			return eris.Errorf("outreach: step %d has negative wait_days", i)
		}
	}
	return nil
}
