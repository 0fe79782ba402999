// Package generation 调用大模型生成社交媒体帖子并保存为草稿
package generation

import "fmt"

// BuildPrompt 生成帖子的固定提示词
func BuildPrompt(platform, brandName, objective string) string {
	return fmt.Sprintf("Write a %s post for %s. Goal: %s. Tone: skeptical, direct, no hype. "+
		"End with a soft CTA. Keep it under 280 characters for Twitter/X, or appropriate length for other platforms.",
		platform, brandName, objective)
}
