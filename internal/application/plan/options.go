package plan

// 视频分镜请求的固定选项集。
// 校验按字面值做成员检查，新增选项需同步更新提示词模板。

// Tones 支持的叙事基调
var Tones = []string{
	"cinematic",
	"dramatic",
	"playful",
	"inspirational",
	"mysterious",
	"energetic",
}

// VisualStyles 支持的视觉风格
var VisualStyles = []string{
	"photorealistic",
	"anime",
	"noir",
	"documentary",
	"retro_film",
	"vibrant_pop",
}

// AspectRatios 支持的画幅比例
var AspectRatios = []string{
	"16:9",
	"9:16",
	"1:1",
	"4:5",
}

// IsValidTone 检查基调是否合法
func IsValidTone(tone string) bool {
	return contains(Tones, tone)
}

// IsValidVisualStyle 检查视觉风格是否合法
func IsValidVisualStyle(style string) bool {
	return contains(VisualStyles, style)
}

// IsValidAspectRatio 检查画幅比例是否合法
func IsValidAspectRatio(ratio string) bool {
	return contains(AspectRatios, ratio)
}

func contains(set []string, value string) bool {
	for _, item := range set {
		if item == value {
			return true
		}
	}
	return false
}
