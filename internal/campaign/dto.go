package campaign

import (
	"github.com/houzhh15/autopilot/internal/models"
)

// OnboardingRequest 新手引导请求
type OnboardingRequest struct {
	Goal string `json:"goal" binding:"required"`
}

// StartWizardRequest 创建向导会话请求，campaign_id 用于编辑
type StartWizardRequest struct {
	CampaignID string `json:"campaign_id" binding:"omitempty,uuid"`
}

// ToggleRequest 多选字段切换请求
type ToggleRequest struct {
	Field string `json:"field" binding:"required,oneof=toneOfVoice platforms"`
	Value string `json:"value" binding:"required"`
}

// WizardResponse 向导会话响应
type WizardResponse struct {
	ID         string                 `json:"id"`
	CampaignID string                 `json:"campaign_id,omitempty"`
	Step       int                    `json:"step"`
	Form       Form                   `json:"form"`
	CanAdvance bool                   `json:"can_advance"`
	CanSubmit  bool                   `json:"can_submit"`
	Summary    map[string]interface{} `json:"summary,omitempty"`
}

// FromSession 由会话构造响应
func (r *WizardResponse) FromSession(s *Session) {
	r.ID = s.ID
	if s.CampaignID != nil {
		r.CampaignID = s.CampaignID.String()
	}
	r.Step = s.Wizard.Step
	r.Form = s.Wizard.Form
	r.CanAdvance = s.Wizard.CanAdvance()
	r.CanSubmit = s.Wizard.CanSubmit()
	if s.Wizard.Step == StepPlatforms {
		r.Summary = s.Wizard.Summary()
	}
}

// OptionsResponse 向导可选项
type OptionsResponse struct {
	Industries  []string `json:"industries"`
	Objectives  []string `json:"objectives"`
	Tones       []string `json:"tones"`
	Platforms   []string `json:"platforms"`
	Frequencies []string `json:"frequencies"`
	Durations   []string `json:"durations"`
}

// CampaignListResponse 活动列表响应
type CampaignListResponse struct {
	Data  []*models.Campaign `json:"data"`
	Count int                `json:"count"`
}
