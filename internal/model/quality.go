package model

import "fmt"

var videoQualities = map[int]string{
	127: "8K",
	126: "Dolby Vision",
	125: "HDR",
	120: "4K",
	116: "1080P60",
	112: "1080P+",
	100: "AI Restored",
	80:  "1080P",
	74:  "720P60",
	64:  "720P",
	48:  "720P",
	32:  "480P",
	16:  "360P",
	6:   "240P",
	5:   "144P",
}

var audioQualities = map[int]string{
	30216: "64K",
	30232: "132K",
	30280: "192K",
	30250: "Dolby Atmos",
	30251: "Hi-Res",
}

// VideoQualityLabel maps a video quality id to a display label.
func VideoQualityLabel(q int) string {
	if label, ok := videoQualities[q]; ok {
		return label
	}
	return fmt.Sprintf("Q%d", q)
}

// AudioQualityLabel maps an audio quality id to a display label.
func AudioQualityLabel(q int) string {
	if label, ok := audioQualities[q]; ok {
		return label
	}
	return fmt.Sprintf("A%d", q)
}
