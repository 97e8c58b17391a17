package approval

// Badge is a display label with its color classes.
type Badge struct {
	Text       string `json:"text"`
	ColorClass string `json:"color_class"`
}

const (
	colorGray   = "bg-gray-100 text-gray-800"
	colorYellow = "bg-yellow-100 text-yellow-800"
	colorBlue   = "bg-blue-100 text-blue-800"
	colorGreen  = "bg-green-100 text-green-800"
	colorRed    = "bg-red-100 text-red-800"
	colorPurple = "bg-purple-100 text-purple-800"
	colorOrange = "bg-orange-100 text-orange-800"
)

// fallbackStatusBadge is used for any status missing from a resource's table.
var fallbackStatusBadge = Badge{Text: "Menunggu", ColorClass: colorGray}

var baseStatusLabels = map[Status]Badge{
	StatusPending:        {Text: "Menunggu", ColorClass: colorYellow},
	StatusLevel1Approved: {Text: "Disetujui Level 1", ColorClass: colorBlue},
	StatusApproved:       {Text: "Disetujui", ColorClass: colorGreen},
	StatusRejected:       {Text: "Ditolak", ColorClass: colorRed},
}

func withLabels(extra map[Status]Badge) map[Status]Badge {
	labels := make(map[Status]Badge, len(baseStatusLabels)+len(extra))
	for k, v := range baseStatusLabels {
		labels[k] = v
	}
	for k, v := range extra {
		labels[k] = v
	}
	return labels
}

// StatusBadge maps a status to its badge using the resource's label table.
// Unknown values degrade to the fallback badge instead of failing.
func StatusBadge(r Resource, status Status) Badge {
	if b, ok := r.StatusLabels[status]; ok {
		return b
	}
	return fallbackStatusBadge
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var priorityLabels = map[Priority]Badge{
	PriorityLow:    {Text: "Rendah", ColorClass: colorGray},
	PriorityMedium: {Text: "Sedang", ColorClass: colorBlue},
	PriorityHigh:   {Text: "Tinggi", ColorClass: colorOrange},
	PriorityUrgent: {Text: "Mendesak", ColorClass: colorRed},
}

var fallbackPriorityBadge = Badge{Text: "Sedang", ColorClass: colorGray}

// PriorityBadge maps a priority to its badge, degrading like StatusBadge.
func PriorityBadge(p Priority) Badge {
	if b, ok := priorityLabels[p]; ok {
		return b
	}
	return fallbackPriorityBadge
}

// IsValidPriority reports whether p is one of the known priorities
func IsValidPriority(p Priority) bool {
	_, ok := priorityLabels[p]
	return ok
}
