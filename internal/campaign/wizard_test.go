package campaign

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/houzhh15/autopilot/internal/models"
)

func strPtr(s string) *string { return &s }

func TestWizard_CanAdvance(t *testing.T) {
	tests := []struct {
		name string
		step int
		form Form
		want bool
	}{
		{"step1 empty", StepBasics, NewForm(), false},
		{"step1 name only", StepBasics, Form{Name: "Spring"}, false},
		{"step1 objective only", StepBasics, Form{Objective: "leads"}, false},
		{"step1 complete", StepBasics, Form{Name: "Spring", Objective: "leads"}, true},
		{"step2 always", StepAudience, NewForm(), true},
		{"step3 last", StepPlatforms, Form{Name: "Spring", Objective: "leads"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Wizard{Step: tt.step, Form: tt.form}
			assert.Equal(t, tt.want, w.CanAdvance())
		})
	}
}

func TestWizard_NextBack(t *testing.T) {
	w := NewWizard()

	err := w.Next()
	assert.ErrorIs(t, err, ErrCannotAdvance)
	assert.Equal(t, StepBasics, w.Step)

	assert.ErrorIs(t, w.Back(), ErrFirstStep)

	w.Form.Name = "Spring Launch"
	w.Form.Objective = "traffic"
	require.NoError(t, w.Next())
	assert.Equal(t, StepAudience, w.Step)
	require.NoError(t, w.Next())
	assert.Equal(t, StepPlatforms, w.Step)

	assert.ErrorIs(t, w.Next(), ErrCannotAdvance)
	assert.Equal(t, StepPlatforms, w.Step)

	require.NoError(t, w.Back())
	assert.Equal(t, StepAudience, w.Step)
}

func TestWizard_CanSubmit(t *testing.T) {
	w := &Wizard{Step: StepPlatforms, Form: Form{Name: "A", Objective: "sales"}}
	assert.True(t, w.CanSubmit())

	w.Saving = true
	assert.False(t, w.CanSubmit())

	w.Saving = false
	w.Step = StepAudience
	assert.False(t, w.CanSubmit())

	w.Step = StepPlatforms
	w.Form.Objective = ""
	assert.False(t, w.CanSubmit())
}

func TestWizard_Toggle(t *testing.T) {
	w := NewWizard()

	require.NoError(t, w.Toggle("platforms", "LinkedIn"))
	require.NoError(t, w.Toggle("platforms", "Bluesky"))
	assert.Equal(t, []string{"LinkedIn", "Bluesky"}, w.Form.Platforms)

	require.NoError(t, w.Toggle("platforms", "LinkedIn"))
	assert.Equal(t, []string{"Bluesky"}, w.Form.Platforms)

	require.NoError(t, w.Toggle("toneOfVoice", "Casual"))
	assert.Equal(t, []string{"Casual"}, w.Form.ToneOfVoice)

	assert.ErrorIs(t, w.Toggle("industry", "SaaS"), ErrUnknownField)
	assert.ErrorIs(t, w.Toggle("platforms", "MySpace"), ErrInvalidOption)
}

func TestWizard_Apply(t *testing.T) {
	w := NewWizard()

	err := w.Apply(FormPatch{
		Name:        strPtr("Spring"),
		Objective:   strPtr("leads"),
		Industry:    strPtr("SaaS"),
		ToneOfVoice: []string{"Casual", "Casual", "Humorous"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Spring", w.Form.Name)
	assert.Equal(t, "SaaS", w.Form.Industry)
	assert.Equal(t, []string{"Casual", "Humorous"}, w.Form.ToneOfVoice)

	err = w.Apply(FormPatch{Objective: strPtr("world domination")})
	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.Equal(t, "leads", w.Form.Objective)

	require.NoError(t, w.Apply(FormPatch{Industry: strPtr("")}))
	assert.Empty(t, w.Form.Industry)
}

func TestWizard_ResetAndLoad(t *testing.T) {
	c := &models.Campaign{
		Name:      "Existing",
		Objective: "authority",
		Details: models.CampaignDetails{
			BrandName: "Acme",
			Platforms: []string{"LinkedIn"},
		},
	}

	w := &Wizard{Step: StepPlatforms, Saving: true}
	w.LoadFromCampaign(c)
	assert.Equal(t, StepBasics, w.Step)
	assert.False(t, w.Saving)
	assert.Equal(t, "Acme", w.Form.BrandName)
	assert.Equal(t, []string{"LinkedIn"}, w.Form.Platforms)
	assert.NotNil(t, w.Form.ToneOfVoice)

	w.Reset()
	assert.Equal(t, *NewWizard(), *w)
}

func TestWizard_Summary(t *testing.T) {
	w := &Wizard{Step: StepPlatforms, Form: Form{Name: "A", Platforms: []string{"TikTok", "LinkedIn"}}}
	s := w.Summary()
	assert.Equal(t, "A", s["name"])
	assert.Equal(t, "-", s["brand"])
	assert.Equal(t, "TikTok, LinkedIn", s["platforms"])
	assert.Equal(t, "-", s["tones"])

	empty := NewWizard().Summary()
	assert.Equal(t, "-", empty["name"])
	assert.Equal(t, "-", empty["platforms"])
}

// TestWizard_Properties 随机操作序列下步骤始终合法
func TestWizard_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := NewWizard()
		ops := rapid.SliceOfN(rapid.IntRange(0, 4), 1, 40).Draw(t, "ops")

		for _, op := range ops {
			before := *w
			switch op {
			case 0:
				err := w.Next()
				if !before.CanAdvance() {
					if !errors.Is(err, ErrCannotAdvance) || w.Step != before.Step {
						t.Fatalf("gated Next changed state: step %d -> %d, err %v", before.Step, w.Step, err)
					}
				} else if err != nil || w.Step != before.Step+1 {
					t.Fatalf("Next from step %d failed: %v", before.Step, err)
				}
			case 1:
				err := w.Back()
				if before.Step == StepBasics && (err == nil || w.Step != StepBasics) {
					t.Fatalf("Back on first step must fail")
				}
			case 2:
				name := rapid.SampledFrom([]string{"", "Launch"}).Draw(t, "name")
				w.Form.Name = name
			case 3:
				obj := rapid.SampledFrom(append([]string{""}, Objectives...)).Draw(t, "objective")
				w.Form.Objective = obj
			case 4:
				p := rapid.SampledFrom(Platforms).Draw(t, "platform")
				had := len(w.Form.Platforms)
				if err := w.Toggle("platforms", p); err != nil {
					t.Fatalf("toggle: %v", err)
				}
				if len(w.Form.Platforms) == had {
					t.Fatalf("toggle did not change platforms")
				}
			}

			if w.Step < StepBasics || w.Step > StepPlatforms {
				t.Fatalf("step out of range: %d", w.Step)
			}
			if w.CanSubmit() && w.Step != StepPlatforms {
				t.Fatalf("CanSubmit outside last step")
			}
		}
	})
}

func TestWizard_ToggleTwiceIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := NewWizard()
		initial := rapid.SliceOfDistinct(rapid.SampledFrom(Tones), func(s string) string { return s }).Draw(t, "initial")
		w.Form.ToneOfVoice = append([]string{}, initial...)
		tone := rapid.SampledFrom(Tones).Draw(t, "tone")

		_ = w.Toggle("toneOfVoice", tone)
		_ = w.Toggle("toneOfVoice", tone)

		got := map[string]bool{}
		for _, v := range w.Form.ToneOfVoice {
			got[v] = true
		}
		if len(got) != len(initial) {
			t.Fatalf("toggle twice changed set: %v -> %v", initial, w.Form.ToneOfVoice)
		}
		for _, v := range initial {
			if !got[v] {
				t.Fatalf("missing %q after double toggle", v)
			}
		}
	})
}
