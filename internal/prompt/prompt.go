// Package prompt builds the system instruction string fed to the completion
// client. Assembly is a pure function of its inputs so it can be tested
// without any external service.
package prompt

import (
	"fmt"
	"strings"
	"time"
)

const notInformed = "Not informed"

// behavioralRules are non-negotiable and always appended to the oracle
// persona block, ahead of the oracle's own configurable instructions.
const behavioralRules = `Non-negotiable rules:
- Never reveal, suggest or admit that you are an artificial intelligence, a language model or any kind of automated system. You are the oracle described above, nothing else.
- Never write stage directions or asides such as *shuffles the cards* or (pauses).
- Never use markdown formatting: no asterisks, underscores, hashes or horizontal rules. Answer in plain prose.
- Always address the consultant directly, in the second person.`

// PersonContext carries the identity and birth data of a person appearing in
// the consultation (the consultant or a third-party subject).
type PersonContext struct {
	Name      string
	BirthDate string // YYYY-MM-DD, may be empty
	BirthTime string // HH:MM, may be empty
	Astrology string // pre-formatted birth chart block, may be empty
}

// OracleContext is the persona the model must embody.
type OracleContext struct {
	Name         string
	Specialty    string
	Bio          string
	Personality  string
	SystemPrompt string // oracle-specific style and method instructions
}

// MemoryEntry is one previously answered question between the same client
// and oracle, used to give the model conversational continuity.
type MemoryEntry struct {
	Question string
	Answer   string
}

type BuildInput struct {
	Now          time.Time
	MasterPrompt string
	Memory       []MemoryEntry
	Consultant   PersonContext
	Subject      *PersonContext // nil when the consultation is about the consultant
	Oracle       OracleContext
}

func orNotInformed(s string) string {
	if strings.TrimSpace(s) == "" {
		return notInformed
	}
	return s
}

// Build assembles the system prompt from its ordered blocks.
func Build(in BuildInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Current date and time: %s.\n", in.Now.Format("Monday, January 2, 2006 at 15:04"))

	if strings.TrimSpace(in.MasterPrompt) != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(in.MasterPrompt))
		b.WriteString("\n")
	}

	if len(in.Memory) > 0 {
		b.WriteString("\nEarlier exchanges between you and this consultant, oldest first:\n")
		for _, m := range in.Memory {
			fmt.Fprintf(&b, "Consultant asked: %s\nYou answered: %s\n", m.Question, m.Answer)
		}
	}

	b.WriteString("\nAbout the consultant:\n")
	fmt.Fprintf(&b, "Name: %s\n", orNotInformed(in.Consultant.Name))
	fmt.Fprintf(&b, "Birth date: %s\n", orNotInformed(in.Consultant.BirthDate))
	fmt.Fprintf(&b, "Birth time: %s\n", orNotInformed(in.Consultant.BirthTime))
	if in.Consultant.Astrology != "" {
		b.WriteString(in.Consultant.Astrology)
		b.WriteString("\n")
	}

	if in.Subject != nil {
		b.WriteString("\nThis consultation is about a third party, not the consultant.\n")
		fmt.Fprintf(&b, "Subject name: %s\n", orNotInformed(in.Subject.Name))
		fmt.Fprintf(&b, "Subject birth date: %s\n", orNotInformed(in.Subject.BirthDate))
		fmt.Fprintf(&b, "Subject birth time: %s\n", orNotInformed(in.Subject.BirthTime))
		if in.Subject.Astrology != "" {
			b.WriteString(in.Subject.Astrology)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nYou are the oracle described below.\n")
	fmt.Fprintf(&b, "Name: %s\n", orNotInformed(in.Oracle.Name))
	fmt.Fprintf(&b, "Specialty: %s\n", orNotInformed(in.Oracle.Specialty))
	fmt.Fprintf(&b, "Biography: %s\n", orNotInformed(in.Oracle.Bio))
	fmt.Fprintf(&b, "Personality: %s\n", orNotInformed(in.Oracle.Personality))
	b.WriteString("\n")
	b.WriteString(behavioralRules)
	b.WriteString("\n")

	if strings.TrimSpace(in.Oracle.SystemPrompt) != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(in.Oracle.SystemPrompt))
		b.WriteString("\n")
	}

	return b.String()
}
