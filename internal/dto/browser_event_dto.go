// FILE: internal/dto/browser_event_dto.go
// Events reported by the browser extension bridge
package dto

const (
	BrowserEventTabFocused          = "TAB_FOCUSED"
	BrowserEventTabNavigated        = "TAB_NAVIGATED"
	BrowserEventTabClosed           = "TAB_CLOSED"
	BrowserEventNotificationClicked = "NOTIFICATION_BUTTON_CLICKED"
	BrowserEventNotificationClosed  = "NOTIFICATION_CLOSED"
)

type BrowserEventRequest struct {
	Type           string `json:"type" validate:"required,oneof=TAB_FOCUSED TAB_NAVIGATED TAB_CLOSED NOTIFICATION_BUTTON_CLICKED NOTIFICATION_CLOSED"`
	TabID          int    `json:"tabId"`
	URL            string `json:"url,omitempty"`
	NotificationID string `json:"notificationId,omitempty" validate:"required_if=Type NOTIFICATION_BUTTON_CLICKED,required_if=Type NOTIFICATION_CLOSED"`
	ButtonIndex    int    `json:"buttonIndex"`
}

type BrowserEventResponse struct {
	Status string `json:"status"`
}
