package engine

import "github.com/oceanwatch/tidestreak/models"

// ContentItem is one educational resource offered during recovery.
type ContentItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	XP    int    `json:"xp"`
}

// RecoveryContent is the educational package surfaced after a lifeline is
// spent: read an article, watch a video, pass a quiz.
type RecoveryContent struct {
	Category models.Category `json:"category"`
	Articles []ContentItem   `json:"articles"`
	Videos   []ContentItem   `json:"videos"`
	Quizzes  []ContentItem   `json:"quizzes"`
}

// requiredActivities lists the daily activities that make a check-in count.
var requiredActivities = map[models.Category][]string{
	models.CategoryPlasticFree: {
		"avoided-plastic-bag",
		"used-reusable-bottle",
		"brought-reusable-cup",
		"refused-plastic-straw",
		"used-metal-utensils",
		"bought-bulk-items",
		"zero-waste-lunch",
		"composted-organics",
	},
	models.CategoryConservation: {
		"reported-sighting",
		"beach-cleanup",
		"reduced-water-usage",
		"supported-mpa-petition",
		"sustainable-seafood-choice",
	},
	models.CategoryLearning: {
		"read-ocean-article",
		"watched-documentary-segment",
		"completed-species-quiz",
		"explored-habitat-map",
	},
	models.CategoryCommunity: {
		"shared-impact-story",
		"invited-friend",
		"joined-local-event",
		"commented-on-sighting",
	},
}

// extraActivities lists the bonus activities that feed the lifeline economy.
var extraActivities = map[models.Category][]string{
	models.CategoryPlasticFree: {
		"glass-containers",
		"avoided-packaged-foods",
		"reusable-shopping-bag",
		"bamboo-toothbrush",
	},
	models.CategoryConservation: {
		"organized-cleanup",
		"adopted-reef-section",
		"donated-to-rescue",
	},
	models.CategoryLearning: {
		"taught-someone",
		"finished-course-module",
		"wrote-summary-post",
	},
	models.CategoryCommunity: {
		"hosted-meetup",
		"mentored-newcomer",
		"translated-content",
	},
}

// activityNames maps activity ids to display names.
var activityNames = map[string]string{
	"avoided-plastic-bag":         "Avoided plastic bags",
	"used-reusable-bottle":        "Used reusable water bottle",
	"brought-reusable-cup":        "Brought reusable cup",
	"refused-plastic-straw":       "Refused plastic straw",
	"used-metal-utensils":         "Used metal utensils",
	"bought-bulk-items":           "Bought items in bulk",
	"zero-waste-lunch":            "Had zero-waste lunch",
	"composted-organics":          "Composted organic waste",
	"glass-containers":            "Used glass containers",
	"avoided-packaged-foods":      "Avoided packaged foods",
	"reusable-shopping-bag":       "Used reusable shopping bags",
	"bamboo-toothbrush":           "Used bamboo toothbrush",
	"reported-sighting":           "Reported a marine sighting",
	"beach-cleanup":               "Picked up litter at the shore",
	"reduced-water-usage":         "Reduced water usage",
	"supported-mpa-petition":      "Supported a marine protection petition",
	"sustainable-seafood-choice":  "Chose sustainable seafood",
	"organized-cleanup":           "Organized a cleanup",
	"adopted-reef-section":        "Adopted a reef section",
	"donated-to-rescue":           "Donated to a marine rescue",
	"read-ocean-article":          "Read an ocean article",
	"watched-documentary-segment": "Watched a documentary segment",
	"completed-species-quiz":      "Completed a species quiz",
	"explored-habitat-map":        "Explored the habitat map",
	"taught-someone":              "Taught someone a fact",
	"finished-course-module":      "Finished a course module",
	"wrote-summary-post":          "Wrote a summary post",
	"shared-impact-story":         "Shared an impact story",
	"invited-friend":              "Invited a friend",
	"joined-local-event":          "Joined a local event",
	"commented-on-sighting":       "Commented on a sighting",
	"hosted-meetup":               "Hosted a meetup",
	"mentored-newcomer":           "Mentored a newcomer",
	"translated-content":          "Translated content",
}

// recoveryLibrary holds the per-category educational packages.
var recoveryLibrary = map[models.Category]RecoveryContent{
	models.CategoryPlasticFree: {
		Category: models.CategoryPlasticFree,
		Articles: []ContentItem{
			{ID: "pf-art-1", Title: "How single-use plastic reaches the open ocean", XP: 10},
			{ID: "pf-art-2", Title: "Microplastics in the food chain", XP: 10},
		},
		Videos: []ContentItem{
			{ID: "pf-vid-1", Title: "A week without plastic: practical swaps", XP: 15},
		},
		Quizzes: []ContentItem{
			{ID: "pf-quiz-1", Title: "Plastic-free fundamentals", XP: 25},
		},
	},
	models.CategoryConservation: {
		Category: models.CategoryConservation,
		Articles: []ContentItem{
			{ID: "cons-art-1", Title: "Why marine protected areas work", XP: 10},
		},
		Videos: []ContentItem{
			{ID: "cons-vid-1", Title: "Restoring a kelp forest", XP: 15},
		},
		Quizzes: []ContentItem{
			{ID: "cons-quiz-1", Title: "Conservation essentials", XP: 25},
		},
	},
	models.CategoryLearning: {
		Category: models.CategoryLearning,
		Articles: []ContentItem{
			{ID: "learn-art-1", Title: "Reading the tides: ocean literacy basics", XP: 10},
		},
		Videos: []ContentItem{
			{ID: "learn-vid-1", Title: "Deep sea expedition highlights", XP: 15},
		},
		Quizzes: []ContentItem{
			{ID: "learn-quiz-1", Title: "Ocean science refresher", XP: 25},
		},
	},
	models.CategoryCommunity: {
		Category: models.CategoryCommunity,
		Articles: []ContentItem{
			{ID: "comm-art-1", Title: "Building local conservation groups", XP: 10},
		},
		Videos: []ContentItem{
			{ID: "comm-vid-1", Title: "Community cleanup stories", XP: 15},
		},
		Quizzes: []ContentItem{
			{ID: "comm-quiz-1", Title: "Organizing for the ocean", XP: 25},
		},
	},
}

// RequiredActivities returns the daily activity catalog for a category.
func RequiredActivities(c models.Category) []string {
	return requiredActivities[c]
}

// ExtraActivities returns the bonus activity catalog for a category.
func ExtraActivities(c models.Category) []string {
	return extraActivities[c]
}

// ActivityDisplayName resolves an activity id to its display name, falling
// back to the id itself for unknown values.
func ActivityDisplayName(id string) string {
	if name, ok := activityNames[id]; ok {
		return name
	}
	return id
}

// RecoveryContentFor returns the educational package for a category.
func RecoveryContentFor(c models.Category) RecoveryContent {
	return recoveryLibrary[c]
}
