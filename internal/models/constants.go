package models

// Tool names understood by the orchestrator and dispatcher.
const (
	ToolSearchHotels        = "search_hotels"
	ToolBookHotel           = "book_hotel"
	ToolGetBookingDetails   = "get_booking_details"
	ToolCancelBooking       = "cancel_booking"
	ToolPromptChoice        = "prompt_user_for_choice"
	ToolPromptDates         = "prompt_user_for_dates"
	ToolPromptGuests        = "prompt_user_for_guests"
	ToolDisplayConfirmation = "display_booking_confirmation"
)

// Fixed conversation texts. The model never sees ApologyText as its own
// output; it is appended locally when a gateway call fails.
const (
	GreetingText     = "Hello! I'm your friendly hotel reservation assistant. How can I help you today?"
	ConfirmationText = "Great! Here is your booking confirmation."
	ApologyText      = "Sorry, I encountered an error. Please try again."
)

// ParseModeMarkdown is the Telegram message parse mode used for formatted text.
const ParseModeMarkdown = "Markdown"

const (
	// DefaultConversationTTL is how long Redis keeps an inactive conversation.
	DefaultConversationTTL = 24 * 60 * 60 // seconds

	// RateLimitMessages / RateLimitWindow bound chat submissions per conversation.
	RateLimitMessages = 20
	RateLimitWindow   = 60 // seconds

	// WorkerQueueSize is the sheets sync queue capacity.
	WorkerQueueSize = 1000

	// DateLayout is the calendar-date wire format. No timezone semantics.
	DateLayout = "2006-01-02"
)
