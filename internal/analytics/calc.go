// Package analytics 计算仪表盘、活动报告和管理员成本收入统计
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/houzhh15/autopilot/internal/models"
)

// 单次操作成本估算（美元）
const (
	CostOpenAIText = 0.01
	CostDalleImage = 0.04
)

// 标签格式
const (
	dayLabel   = "Jan 2"
	monthLabel = "Jan 06"
	dateLabel  = "1/2/2006"
	noData     = "N/A"
)

// Bucket 一个分组及其计数，按首次出现顺序排列
type Bucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// counter 保持插入顺序的计数器
type counter struct {
	index   map[string]int
	buckets []Bucket
}

func newCounter() *counter {
	return &counter{index: map[string]int{}}
}

func (c *counter) add(name string) {
	if i, ok := c.index[name]; ok {
		c.buckets[i].Value++
		return
	}
	c.index[name] = len(c.buckets)
	c.buckets = append(c.buckets, Bucket{Name: name, Value: 1})
}

func (c *counter) result() []Bucket {
	if c.buckets == nil {
		return []Bucket{}
	}
	return c.buckets
}

// labeled 按原始值计数，仅展示名经 label 转换
func (c *counter) labeled(label func(string) string) []Bucket {
	out := make([]Bucket, len(c.buckets))
	for i, b := range c.buckets {
		out[i] = Bucket{Name: label(b.Name), Value: b.Value}
	}
	return out
}

// capitalize 首字母大写
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Dashboard 首页概览
type Dashboard struct {
	Campaigns       int64              `json:"campaigns"`
	Leads           int64              `json:"leads"`
	Posts           int64              `json:"posts"`
	RecentCampaigns []*models.Campaign `json:"recent_campaigns"`
}

// CampaignReport 活动报告，posts 需按创建时间升序
type CampaignReport struct {
	TotalPosts       int      `json:"total_posts"`
	MostUsedPlatform string   `json:"most_used_platform"`
	DateRange        string   `json:"date_range"`
	Platforms        []Bucket `json:"platforms"`
	Statuses         []Bucket `json:"statuses"`
	PostsPerDay      []Bucket `json:"posts_per_day"`
}

// BuildCampaignReport 计算平台、状态、每日分布
func BuildCampaignReport(posts []*models.Post) *CampaignReport {
	platforms, statuses, days := newCounter(), newCounter(), newCounter()
	for _, p := range posts {
		platform := p.Platform
		if platform == "" {
			platform = "unknown"
		}
		platforms.add(platform)

		status := string(p.Status)
		if status == "" {
			status = string(models.PostStatusDraft)
		}
		statuses.add(status)

		days.add(p.CreatedAt.UTC().Format(dayLabel))
	}

	report := &CampaignReport{
		TotalPosts:       len(posts),
		MostUsedPlatform: noData,
		DateRange:        noData,
		Platforms:        platforms.labeled(capitalize),
		Statuses:         statuses.labeled(capitalize),
		PostsPerDay:      days.result(),
	}

	// 并列时取后出现的平台
	if len(report.Platforms) > 0 {
		best := report.Platforms[0]
		for _, b := range report.Platforms[1:] {
			if !(best.Value > b.Value) {
				best = b
			}
		}
		report.MostUsedPlatform = best.Name
	}
	if len(posts) > 0 {
		report.DateRange = fmt.Sprintf("%s - %s",
			posts[0].CreatedAt.UTC().Format(dateLabel),
			posts[len(posts)-1].CreatedAt.UTC().Format(dateLabel))
	}
	return report
}

// MonthCost 某月的估算花费
type MonthCost struct {
	Month string  `json:"month"`
	Cost  float64 `json:"cost"`
}

// CampaignPosts 活动及其帖子数
type CampaignPosts struct {
	Name  string `json:"name"`
	Posts int    `json:"posts"`
}

// Insight 运营建议
type Insight struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// AdminReport 管理员统计
type AdminReport struct {
	TotalPosts      int             `json:"total_posts"`
	ImagePosts      int             `json:"image_posts"`
	TextCosts       float64         `json:"text_costs"`
	ImageCosts      float64         `json:"image_costs"`
	TotalSpending   float64         `json:"total_spending"`
	CostPerPost     float64         `json:"cost_per_post"`
	MonthlySpending []MonthCost     `json:"monthly_spending"`
	MonthlyRevenue  float64         `json:"monthly_revenue"`
	Platforms       []Bucket        `json:"platforms"`
	TopCampaigns    []CampaignPosts `json:"top_campaigns"`
	Published       int             `json:"published"`
	Drafts          int             `json:"drafts"`
	SuccessRate     float64         `json:"success_rate"`
	PostsOverTime   []Bucket        `json:"posts_over_time"`
	HourlyActivity  [24]int         `json:"hourly_activity"`
	PeakHour        *int            `json:"peak_hour"`
	Insights        []Insight       `json:"insights"`
}

// BuildAdminReport 计算成本、收入和活跃度，posts 需按创建时间升序
func BuildAdminReport(posts []*models.Post, campaigns []*models.Campaign, subs []*models.Subscription) *AdminReport {
	r := &AdminReport{TotalPosts: len(posts)}

	months := []MonthCost{}
	monthIndex := map[string]int{}
	platforms, days := newCounter(), newCounter()
	perCampaign := map[string]int{}

	for _, p := range posts {
		cost := CostOpenAIText
		if p.HasImage() {
			r.ImagePosts++
			cost += CostDalleImage
		}

		month := p.CreatedAt.UTC().Format(monthLabel)
		if i, ok := monthIndex[month]; ok {
			months[i].Cost += cost
		} else {
			monthIndex[month] = len(months)
			months = append(months, MonthCost{Month: month, Cost: cost})
		}

		platform := strings.ToLower(p.Platform)
		if platform == "" {
			platform = "unknown"
		}
		platforms.add(platform)
		days.add(p.CreatedAt.UTC().Format(dayLabel))
		perCampaign[p.CampaignID.String()]++

		if p.Status == models.PostStatusPublished {
			r.Published++
		}
		r.HourlyActivity[p.CreatedAt.UTC().Hour()]++
	}

	r.TextCosts = float64(r.TotalPosts) * CostOpenAIText
	r.ImageCosts = float64(r.ImagePosts) * CostDalleImage
	r.TotalSpending = r.TextCosts + r.ImageCosts
	if r.TotalPosts > 0 {
		r.CostPerPost = r.TotalSpending / float64(r.TotalPosts)
		r.SuccessRate = float64(r.Published) / float64(r.TotalPosts) * 100
	}
	for i := range months {
		months[i].Cost = round2(months[i].Cost)
	}
	r.MonthlySpending = months
	r.Drafts = r.TotalPosts - r.Published
	r.Platforms = platforms.labeled(capitalize)
	r.PostsOverTime = days.result()

	for _, s := range subs {
		if s.Plan != nil {
			r.MonthlyRevenue += float64(s.Plan.Price) / 100
		}
	}

	r.TopCampaigns = topCampaigns(campaigns, perCampaign, 5)
	r.PeakHour = peakHour(r.HourlyActivity)
	r.Insights = buildInsights(r)
	return r
}

// campaignLabel 名称，其次目标前 20 个字符，其次 "Campaign <id>"
func campaignLabel(c *models.Campaign) string {
	if c.Name != "" {
		return c.Name
	}
	if c.Objective != "" {
		obj := []rune(c.Objective)
		if len(obj) > 20 {
			obj = obj[:20]
		}
		return string(obj)
	}
	return "Campaign " + c.ID.String()
}

func topCampaigns(campaigns []*models.Campaign, perCampaign map[string]int, n int) []CampaignPosts {
	out := make([]CampaignPosts, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, CampaignPosts{Name: campaignLabel(c), Posts: perCampaign[c.ID.String()]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Posts > out[j].Posts })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// peakHour 帖子最多的小时，并列取较早的小时，没有帖子时为 nil
func peakHour(hours [24]int) *int {
	best := -1
	for h, n := range hours {
		if n == 0 {
			continue
		}
		if best < 0 || n > hours[best] {
			best = h
		}
	}
	if best < 0 {
		return nil
	}
	return &best
}

func buildInsights(r *AdminReport) []Insight {
	insights := []Insight{}
	if r.TotalPosts > 5 && float64(r.ImagePosts)/float64(r.TotalPosts) < 0.3 {
		imageRatio := float64(r.ImagePosts) / float64(r.TotalPosts)
		insights = append(insights, Insight{
			Kind:    "images",
			Title:   "Increase image usage",
			Message: fmt.Sprintf("Only %.0f%% of posts have images. Visual content typically performs better.", imageRatio*100),
		})
	}
	if r.SuccessRate < 50 && r.TotalPosts > 5 {
		insights = append(insights, Insight{
			Kind:    "publish_rate",
			Title:   "Low publish rate",
			Message: "Most posts are still drafts. Consider enabling auto-publish or remind users to publish.",
		})
	}
	if r.MonthlyRevenue > r.TotalSpending {
		insights = append(insights, Insight{
			Kind:    "profitable",
			Title:   "Profitable operations",
			Message: fmt.Sprintf("Revenue exceeds API costs by $%.2f. Consider investing in growth.", r.MonthlyRevenue-r.TotalSpending),
		})
	}
	if r.TotalPosts == 0 {
		insights = append(insights, Insight{
			Kind:    "empty",
			Title:   "No data yet",
			Message: "Generate some posts to see insights and recommendations.",
		})
	}
	return insights
}
