package geography

// Notice codes surfaced next to the list.
const (
	NoticeListUnavailable   = "list-unavailable"
	NoticeLookupUnavailable = "lookup-unavailable"
)

type Notice struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	listUnavailable = Notice{
		Code:    NoticeListUnavailable,
		Message: "Actor list unavailable. The map is empty until the next reload.",
	}
	lookupUnavailable = Notice{
		Code:    NoticeLookupUnavailable,
		Message: "Country lookup unavailable. Showing continent-level results.",
	}
)
