package events

// Listener receives app lifecycle notifications.
//
// Embed NopListener to implement only the events of interest.
type Listener interface {
	OnAppAdd(appType, appName string)
	OnAppDel(appType, appName string)
	OnAppEnable(appType, appName string, hosts []string)
	OnAppDisable(appType, appName string, hosts []string)
	OnAppUpdate(appType, appName string)
}

// NopListener ignores every event.
type NopListener struct{}

func (NopListener) OnAppAdd(string, string)               {}
func (NopListener) OnAppDel(string, string)               {}
func (NopListener) OnAppEnable(string, string, []string)  {}
func (NopListener) OnAppDisable(string, string, []string) {}
func (NopListener) OnAppUpdate(string, string)            {}

var _ Listener = NopListener{}

// Kind names an event.
type Kind string

const (
	KindAdd     Kind = "on_app_add"
	KindDel     Kind = "on_app_del"
	KindEnable  Kind = "on_app_enable"
	KindDisable Kind = "on_app_disable"
	KindUpdate  Kind = "on_app_update"
)

// Event is one fired notification.
// Hosts is set for enable and disable only, and lists the hosts that changed.
type Event struct {
	ID      string   `json:"id"`
	Kind    Kind     `json:"kind"`
	AppType string   `json:"app_type"`
	AppName string   `json:"app_name"`
	Hosts   []string `json:"hosts,omitempty"`
}

// deliver invokes the handler of l matching e.Kind.
func (e Event) deliver(l Listener) {
	switch e.Kind {
	case KindAdd:
		l.OnAppAdd(e.AppType, e.AppName)
	case KindDel:
		l.OnAppDel(e.AppType, e.AppName)
	case KindEnable:
		l.OnAppEnable(e.AppType, e.AppName, e.Hosts)
	case KindDisable:
		l.OnAppDisable(e.AppType, e.AppName, e.Hosts)
	case KindUpdate:
		l.OnAppUpdate(e.AppType, e.AppName)
	}
}
