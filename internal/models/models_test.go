package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignStatus_Toggle(t *testing.T) {
	assert.Equal(t, CampaignStatusPaused, CampaignStatusActive.Toggle())
	assert.Equal(t, CampaignStatusActive, CampaignStatusPaused.Toggle())
	assert.Equal(t, CampaignStatusActive, CampaignStatus("").Toggle())
	assert.False(t, CampaignStatus("archived").IsValid())
}

func TestCampaignDetails_ValueScan(t *testing.T) {
	d := CampaignDetails{BrandName: "Acme", Platforms: []string{"LinkedIn"}}
	v, err := d.Value()
	require.NoError(t, err)
	assert.Contains(t, string(v.([]byte)), `"toneOfVoice":[]`)

	var out CampaignDetails
	require.NoError(t, out.Scan(string(v.([]byte))))
	assert.Equal(t, "Acme", out.BrandName)
	assert.Equal(t, []string{"LinkedIn"}, out.Platforms)

	assert.NoError(t, out.Scan(nil))
	assert.Error(t, out.Scan(42))
}

func TestJSONMap_NilValue(t *testing.T) {
	var m JSONMap
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}

func TestCampaign_DisplayName(t *testing.T) {
	c := &Campaign{Objective: "leads"}
	assert.Equal(t, "leads", c.DisplayName())
	c.Name = "Q1 Launch"
	assert.Equal(t, "Q1 Launch", c.DisplayName())
}

func TestHooksFillDefaults(t *testing.T) {
	tenant := &Tenant{}
	require.NoError(t, tenant.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, tenant.ID)
	assert.Equal(t, DefaultBrandName, tenant.BrandName)

	lead := &Lead{Email: "a@b.co"}
	require.NoError(t, lead.BeforeCreate(nil))
	assert.Equal(t, LeadSourceCaptureForm, lead.Source)

	post := &Post{}
	require.NoError(t, post.BeforeCreate(nil))
	assert.Equal(t, PostStatusDraft, post.Status)
	assert.False(t, post.HasImage())
}

func TestPlanType_DisplayName(t *testing.T) {
	assert.Equal(t, "Pro", PlanPro.DisplayName())
	assert.Equal(t, "Free", PlanType("").DisplayName())
}
