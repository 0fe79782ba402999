// Package campaign 提供活动管理：三步向导、CRUD、复制、启停和新手引导
package campaign

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/houzhh15/autopilot/internal/models"
)

// 向导步骤
const (
	StepBasics    = 1 // 基本信息
	StepAudience  = 2 // 受众与信息
	StepPlatforms = 3 // 平台与排期
)

// 可选项
var (
	Industries  = []string{"Real Estate", "E-commerce", "SaaS", "Coaching", "Agency", "Other"}
	Objectives  = []string{"traffic", "leads", "sales", "authority"}
	Tones       = []string{"Professional", "Casual", "Humorous", "Inspirational", "Educational", "Provocative"}
	Platforms   = []string{"X/Twitter", "LinkedIn", "Facebook", "Instagram", "TikTok", "Bluesky"}
	Frequencies = []string{"Daily", "3x/week", "Weekly"}
	Durations   = []string{"1 week", "2 weeks", "1 month", "3 months"}
)

// 向导错误
var (
	ErrCannotAdvance = errors.New("cannot advance: required fields missing or already on last step")
	ErrFirstStep     = errors.New("already on first step")
	ErrUnknownField  = errors.New("unknown field")
	ErrInvalidOption = errors.New("invalid option")
)

// Form 活动表单
type Form struct {
	Name             string   `json:"name"`
	BrandName        string   `json:"brandName"`
	Industry         string   `json:"industry"`
	Objective        string   `json:"objective"`
	TargetAudience   string   `json:"targetAudience"`
	ToneOfVoice      []string `json:"toneOfVoice"`
	Platforms        []string `json:"platforms"`
	KeyMessages      string   `json:"keyMessages"`
	CallToAction     string   `json:"callToAction"`
	ContentThemes    string   `json:"contentThemes"`
	PostingFrequency string   `json:"postingFrequency"`
	CampaignDuration string   `json:"campaignDuration"`
}

// NewForm 返回空表单
func NewForm() Form {
	return Form{ToneOfVoice: []string{}, Platforms: []string{}}
}

// Details 转换为活动详情
func (f Form) Details() models.CampaignDetails {
	return models.CampaignDetails{
		BrandName:        f.BrandName,
		Industry:         f.Industry,
		TargetAudience:   f.TargetAudience,
		ToneOfVoice:      append([]string{}, f.ToneOfVoice...),
		Platforms:        append([]string{}, f.Platforms...),
		KeyMessages:      f.KeyMessages,
		CallToAction:     f.CallToAction,
		ContentThemes:    f.ContentThemes,
		PostingFrequency: f.PostingFrequency,
		CampaignDuration: f.CampaignDuration,
	}
}

// Complete 名称和目标都已填写
func (f Form) Complete() bool {
	return f.Name != "" && f.Objective != ""
}

// FormFromCampaign 由已有活动构造表单，缺失字段取空值
func FormFromCampaign(c *models.Campaign) Form {
	d := c.Details
	form := Form{
		Name:             c.Name,
		BrandName:        d.BrandName,
		Industry:         d.Industry,
		Objective:        c.Objective,
		TargetAudience:   d.TargetAudience,
		ToneOfVoice:      append([]string{}, d.ToneOfVoice...),
		Platforms:        append([]string{}, d.Platforms...),
		KeyMessages:      d.KeyMessages,
		CallToAction:     d.CallToAction,
		ContentThemes:    d.ContentThemes,
		PostingFrequency: d.PostingFrequency,
		CampaignDuration: d.CampaignDuration,
	}
	return form
}

// FormPatch 表单局部更新，nil 字段保持不变
type FormPatch struct {
	Name             *string  `json:"name,omitempty"`
	BrandName        *string  `json:"brandName,omitempty"`
	Industry         *string  `json:"industry,omitempty"`
	Objective        *string  `json:"objective,omitempty"`
	TargetAudience   *string  `json:"targetAudience,omitempty"`
	ToneOfVoice      []string `json:"toneOfVoice,omitempty"`
	Platforms        []string `json:"platforms,omitempty"`
	KeyMessages      *string  `json:"keyMessages,omitempty"`
	CallToAction     *string  `json:"callToAction,omitempty"`
	ContentThemes    *string  `json:"contentThemes,omitempty"`
	PostingFrequency *string  `json:"postingFrequency,omitempty"`
	CampaignDuration *string  `json:"campaignDuration,omitempty"`
}

// Wizard 三步活动向导状态机
type Wizard struct {
	Step   int  `json:"step"`
	Form   Form `json:"form"`
	Saving bool `json:"saving"`
}

// NewWizard 返回位于第一步的空向导
func NewWizard() *Wizard {
	return &Wizard{Step: StepBasics, Form: NewForm()}
}

// CanAdvance 第一步需要名称和目标，第二步总是允许，第三步为最后一步
func (w *Wizard) CanAdvance() bool {
	switch w.Step {
	case StepBasics:
		return w.Form.Complete()
	case StepAudience:
		return true
	default:
		return false
	}
}

// Next 前进一步，不允许时返回错误且步骤不变
func (w *Wizard) Next() error {
	if !w.CanAdvance() {
		return ErrCannotAdvance
	}
	w.Step++
	return nil
}

// Back 后退一步，第一步时返回错误
func (w *Wizard) Back() error {
	if w.Step <= StepBasics {
		return ErrFirstStep
	}
	w.Step--
	return nil
}

// CanSubmit 位于最后一步、必填项齐全且未在保存中
func (w *Wizard) CanSubmit() bool {
	return w.Step == StepPlatforms && w.Form.Complete() && !w.Saving
}

// Reset 恢复初始状态
func (w *Wizard) Reset() {
	*w = *NewWizard()
}

// LoadFromCampaign 载入已有活动用于编辑，回到第一步
func (w *Wizard) LoadFromCampaign(c *models.Campaign) {
	w.Step = StepBasics
	w.Saving = false
	w.Form = FormFromCampaign(c)
}

// Toggle 在 toneOfVoice 或 platforms 中添加或移除一个值
func (w *Wizard) Toggle(field, value string) error {
	var target *[]string
	var options []string
	switch field {
	case "toneOfVoice":
		target, options = &w.Form.ToneOfVoice, Tones
	case "platforms":
		target, options = &w.Form.Platforms, Platforms
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if !slices.Contains(options, value) {
		return fmt.Errorf("%w: %s=%q", ErrInvalidOption, field, value)
	}

	for i, v := range *target {
		if v == value {
			*target = append((*target)[:i:i], (*target)[i+1:]...)
			return nil
		}
	}
	*target = append(*target, value)
	return nil
}

// Apply 应用局部更新，选择类字段需为可选项之一（空串表示清空）
func (w *Wizard) Apply(p FormPatch) error {
	checks := []struct {
		field   string
		value   *string
		options []string
	}{
		{"industry", p.Industry, Industries},
		{"objective", p.Objective, Objectives},
		{"postingFrequency", p.PostingFrequency, Frequencies},
		{"campaignDuration", p.CampaignDuration, Durations},
	}
	for _, c := range checks {
		if c.value != nil && *c.value != "" && !slices.Contains(c.options, *c.value) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidOption, c.field, *c.value)
		}
	}
	for _, v := range p.ToneOfVoice {
		if !slices.Contains(Tones, v) {
			return fmt.Errorf("%w: toneOfVoice=%q", ErrInvalidOption, v)
		}
	}
	for _, v := range p.Platforms {
		if !slices.Contains(Platforms, v) {
			return fmt.Errorf("%w: platforms=%q", ErrInvalidOption, v)
		}
	}

	f := &w.Form
	setString(&f.Name, p.Name)
	setString(&f.BrandName, p.BrandName)
	setString(&f.Industry, p.Industry)
	setString(&f.Objective, p.Objective)
	setString(&f.TargetAudience, p.TargetAudience)
	setString(&f.KeyMessages, p.KeyMessages)
	setString(&f.CallToAction, p.CallToAction)
	setString(&f.ContentThemes, p.ContentThemes)
	setString(&f.PostingFrequency, p.PostingFrequency)
	setString(&f.CampaignDuration, p.CampaignDuration)
	if p.ToneOfVoice != nil {
		f.ToneOfVoice = dedupe(p.ToneOfVoice)
	}
	if p.Platforms != nil {
		f.Platforms = dedupe(p.Platforms)
	}
	return nil
}

// Summary 第三步展示的摘要
func (w *Wizard) Summary() map[string]interface{} {
	return map[string]interface{}{
		"name":      orDash(w.Form.Name),
		"brand":     orDash(w.Form.BrandName),
		"objective": orDash(w.Form.Objective),
		"platforms": orDash(strings.Join(w.Form.Platforms, ", ")),
		"tones":     orDash(strings.Join(w.Form.ToneOfVoice, ", ")),
		"frequency": orDash(w.Form.PostingFrequency),
		"duration":  orDash(w.Form.CampaignDuration),
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
