// Package prompter asks a terminal user to approve dangerous skill permissions.
package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/reglet-dev/skillguard/domain/ports"
)

var _ ports.Prompter = (*CliPrompter)(nil)

// CliPrompter implements ports.Prompter for CLI environments.
type CliPrompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

// NewCliPrompter creates a new CliPrompter.
func NewCliPrompter(in io.Reader, out io.Writer) *CliPrompter {
	p := &CliPrompter{in: in, out: out}
	if in != nil {
		p.reader = bufio.NewReader(in)
	}
	if p.out == nil {
		p.out = io.Discard
	}
	return p
}

// IsInteractive checks if the input is a terminal.
func (p *CliPrompter) IsInteractive() bool {
	if f, ok := p.in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// PromptForApproval asks the user to approve a single permission.
// Anything other than yes or always is a rejection.
func (p *CliPrompter) PromptForApproval(req entities.ApprovalRequest) (approved bool, always bool, err error) {
	if p.reader == nil {
		return false, false, io.EOF
	}
	_, _ = fmt.Fprintf(p.out, "Skill %q requests: %s\n", req.Skill, req.Description)
	_, _ = fmt.Fprintf(p.out, "Permission: %s\n", req.Permission)
	_, _ = fmt.Fprintf(p.out, "Risk: %s\n", req.RiskLevel)
	_, _ = fmt.Fprintf(p.out, "Allow? [y/n/always]: ")

	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return false, false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, false, nil
	case "a", "always":
		return true, true, nil
	default:
		return false, false, nil
	}
}
