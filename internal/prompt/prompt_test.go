package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 11, 14, 30, 0, 0, time.UTC)

func TestBuild_BlockOrder(t *testing.T) {
	out := Build(BuildInput{
		Now:          testNow,
		MasterPrompt: "Always be kind.",
		Memory: []MemoryEntry{
			{Question: "Will I travel?", Answer: "The cards say yes."},
		},
		Consultant: PersonContext{Name: "Maria", BirthDate: "1990-01-15", BirthTime: "08:30"},
		Oracle: OracleContext{
			Name:         "Madame Zorah",
			Specialty:    "Tarot",
			Bio:          "Thirty years reading cards.",
			Personality:  "Warm and direct.",
			SystemPrompt: "Open every reading by naming a card.",
		},
	})

	// Blocks must appear in their fixed order.
	idxDate := strings.Index(out, "Current date and time")
	idxMaster := strings.Index(out, "Always be kind.")
	idxMemory := strings.Index(out, "Will I travel?")
	idxConsultant := strings.Index(out, "Maria")
	idxOracle := strings.Index(out, "Madame Zorah")
	idxRules := strings.Index(out, "Non-negotiable rules")
	idxStyle := strings.Index(out, "Open every reading")

	require.NotEqual(t, -1, idxDate)
	require.NotEqual(t, -1, idxMaster)
	require.NotEqual(t, -1, idxMemory)
	require.NotEqual(t, -1, idxConsultant)
	require.NotEqual(t, -1, idxOracle)
	require.NotEqual(t, -1, idxRules)
	require.NotEqual(t, -1, idxStyle)

	assert.Less(t, idxDate, idxMaster)
	assert.Less(t, idxMaster, idxMemory)
	assert.Less(t, idxMemory, idxConsultant)
	assert.Less(t, idxConsultant, idxOracle)
	assert.Less(t, idxOracle, idxRules)
	assert.Less(t, idxRules, idxStyle)
}

func TestBuild_MissingFieldsUsePlaceholder(t *testing.T) {
	out := Build(BuildInput{
		Now:        testNow,
		Consultant: PersonContext{},
		Oracle:     OracleContext{Name: "Zorah"},
	})

	assert.Contains(t, out, "Name: Not informed")
	assert.Contains(t, out, "Birth date: Not informed")
	assert.Contains(t, out, "Specialty: Not informed")
}

func TestBuild_SubjectBlockOnlyWhenPresent(t *testing.T) {
	without := Build(BuildInput{Now: testNow, Oracle: OracleContext{Name: "Zorah"}})
	assert.NotContains(t, without, "third party")

	with := Build(BuildInput{
		Now:     testNow,
		Oracle:  OracleContext{Name: "Zorah"},
		Subject: &PersonContext{Name: "João", BirthDate: "1985-03-02"},
	})
	assert.Contains(t, with, "third party")
	assert.Contains(t, with, "Subject name: João")
	assert.Contains(t, with, "Subject birth time: Not informed")
}

func TestBuild_AstrologyBlockIncluded(t *testing.T) {
	out := Build(BuildInput{
		Now: testNow,
		Consultant: PersonContext{
			Name:      "Maria",
			Astrology: "Birth chart: Sun in Capricorn, Moon in Pisces.",
		},
		Oracle: OracleContext{Name: "Zorah"},
	})

	assert.Contains(t, out, "Sun in Capricorn")
}

func TestBuild_IsDeterministic(t *testing.T) {
	in := BuildInput{
		Now:          testNow,
		MasterPrompt: "Tone: gentle.",
		Consultant:   PersonContext{Name: "Maria"},
		Oracle:       OracleContext{Name: "Zorah"},
	}

	assert.Equal(t, Build(in), Build(in))
}
