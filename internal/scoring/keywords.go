package scoring

// taskKeywords maps a task type to the terms that raise confidence when they
// appear in the evidence description. Categories without an entry are scored
// on length and image evidence alone.
var taskKeywords = map[string][]string{
	"recycling": {"recycle", "plastic", "paper", "glass", "waste", "bin", "sorted", "separation"},
	"energy":    {"energy", "electricity", "power", "light", "bulb", "led", "solar", "conservation"},
	"water":     {"water", "conservation", "tap", "shower", "leak", "flow", "save", "usage"},
	"planting":  {"plant", "tree", "garden", "seed", "grow", "soil", "green", "nature"},
	"cleanup":   {"clean", "litter", "trash", "garbage", "collect", "environment", "beach", "park"},
}

// taskTips is appended verbatim to generated feedback per task type.
var taskTips = map[string]string{
	"recycling": " Remember to show sorted materials and proper recycling containers in your evidence.",
	"energy":    " For energy conservation tasks, try to demonstrate before/after or show the specific energy-saving measures you implemented.",
	"water":     " Water conservation evidence works best when you can show the specific water-saving methods or devices you used.",
	"planting":  " For planting tasks, showing the full process from preparation to completed planting provides the best evidence.",
	"cleanup":   " Cleanup tasks are best verified with before and after photos of the area you cleaned.",
}
