package frame

// MessageType tags the role of a frame. The set is closed.
type MessageType uint8

const (
	TypeBroadcast MessageType = iota + 1
	TypeUnicast
	TypeUnicastWithConfirm
	TypeDeliveryConfirmResponse
	TypeSearchRequest
	TypeSearchResponse
)

// Valid reports whether t is one of the defined message types.
func (t MessageType) Valid() bool {
	return t >= TypeBroadcast && t <= TypeSearchResponse
}

// IsFlood reports whether frames of this type are relayed to every neighbor.
func (t MessageType) IsFlood() bool {
	return t == TypeBroadcast || t == TypeSearchRequest || t == TypeSearchResponse
}

func (t MessageType) String() string {
	switch t {
	case TypeBroadcast:
		return "BROADCAST"
	case TypeUnicast:
		return "UNICAST"
	case TypeUnicastWithConfirm:
		return "UNICAST_WITH_CONFIRM"
	case TypeDeliveryConfirmResponse:
		return "DELIVERY_CONFIRM_RESPONSE"
	case TypeSearchRequest:
		return "SEARCH_REQUEST"
	case TypeSearchResponse:
		return "SEARCH_RESPONSE"
	default:
		return "UNKNOWN"
	}
}
