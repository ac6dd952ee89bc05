package service

const (
	// Unit conversions
	MetersPerKm      = 1000.0
	SecondsPerMinute = 60.0

	// Pagination limits
	ActivitiesPerPage = 20 // one upstream page on /activities and /aura
	SnapshotSize      = 10 // activities mirrored by Sync

	// Coach and chat context windows
	RecentContextActivities = 10
	ChatContextTurns        = 5
	ChatHistoryShown        = 10

	// Photo size requested from the photos endpoint
	PhotoSize    = 1000
	PhotoSizeKey = "1000"

	// Fallback share image
	PlaceholderImage = "/static/map_placeholder.png"

	// Static map preview, the polyline path and key are appended
	StaticMapBaseURL = "https://maps.googleapis.com/maps/api/staticmap?size=1080x1080"

	// Sync state keys
	SyncStateLastSync  = "last_activity_sync"
	SyncStateLastCount = "last_activity_count"
)
