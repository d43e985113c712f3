package platform

// DefaultAppName is reported to the notification service when Options leaves
// AppName empty.
const DefaultAppName = "SketchStory"

// Urgency ranks a notification. Platforms without the concept ignore it.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Options configures how a notification is displayed on the host platform.
type Options struct {
	AppName string
	// IconPath points to an image file shown with the notification where
	// supported.
	IconPath string
	Urgency  Urgency
	// TimeoutMS of zero lets the notification service decide.
	TimeoutMS int32
}

func (o Options) appName() string {
	if o.AppName == "" {
		return DefaultAppName
	}
	return o.AppName
}
