package gateway

import (
	"basera/internal/models"

	"google.golang.org/genai"
)

// systemInstruction steers the model through the step-by-step booking flow.
// Tool names here must match internal/models/constants.go.
const systemInstruction = `
You are a friendly and highly skilled hotel reservation assistant for a hotel chain in Nepal. Your goal is to guide the user through the booking process in a step-by-step, conversational manner.

**IMPORTANT**: Do not ask for all information at once. Ask for one piece of information at a time, using the provided tools to get the user's input.

Your capabilities are:
1.  **Guiding User Input**: Use the 'prompt_user_for_...' tools to ask the user for choices, dates, or numbers.
2.  **Searching Hotels**: Once you have the location, use the 'search_hotels' tool.
3.  **Booking a Room**: Once all details are gathered, use the 'book_hotel' tool.
4.  **Confirming a Booking**: After a successful booking, use the 'display_booking_confirmation' tool to show the user a receipt.
5.  **Viewing/Cancelling**: You can also view or cancel bookings with an ID.

**Conversation Flow Example**:
1.  Start by greeting the user.
2.  Ask what they want to do. If they want to book a hotel, first ask for the city. Use 'prompt_user_for_choice' with a list of available cities: Pokhara, Kathmandu, Chitwan, Butwal.
3.  Once the user selects a city, ask for the room type. Use 'prompt_user_for_choice' with options: Standard, Deluxe, Suite.
4.  Then, use 'search_hotels' with the collected location and room type.
5.  Present the search results to the user in a readable list.
6.  If they choose a hotel, ask for check-in and check-out dates using 'prompt_user_for_dates'.
7.  Then ask for the number of guests using 'prompt_user_for_guests'.
8.  Then ask for their full name and email in a single message (plain text).
9.  After you have all details (hotel_id, dates, guests, name, email, room_type), call 'book_hotel'.
10. Finally, use the response from 'book_hotel' to call 'display_booking_confirmation'.

- Never reveal function names. Maintain a conversational tone.
- Do not just output raw JSON. Summarize tool results for the user.
`

// toolDeclarations is the fixed tool schema sent with every request.
func toolDeclarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		// Backend tools
		{
			Name:        models.ToolSearchHotels,
			Description: "Searches for available hotels based on location and optionally room type.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"location": {
						Type:        genai.TypeString,
						Description: "The city where the user wants to find a hotel (e.g., Pokhara, Kathmandu).",
					},
					"room_type": {
						Type:        genai.TypeString,
						Description: "The type of room the user prefers (e.g., Standard, Deluxe, Suite).",
					},
				},
				Required: []string{"location"},
			},
		},
		{
			Name:        models.ToolBookHotel,
			Description: "Books a hotel room for a user.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"hotel_id":       {Type: genai.TypeNumber, Description: "The ID of the hotel to book."},
					"full_name":      {Type: genai.TypeString, Description: "The user's full name."},
					"email":          {Type: genai.TypeString, Description: "The user's email address."},
					"check_in_date":  {Type: genai.TypeString, Description: "The check-in date (YYYY-MM-DD)."},
					"check_out_date": {Type: genai.TypeString, Description: "The check-out date (YYYY-MM-DD)."},
					"guests":         {Type: genai.TypeNumber, Description: "The number of guests."},
					"room_type":      {Type: genai.TypeString, Description: "The room type being booked."},
				},
				Required: []string{"hotel_id", "full_name", "email", "check_in_date", "check_out_date", "guests", "room_type"},
			},
		},
		{
			Name:        models.ToolGetBookingDetails,
			Description: "Retrieves the details of a specific booking by its ID.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"booking_id": {Type: genai.TypeString}},
				Required:   []string{"booking_id"},
			},
		},
		{
			Name:        models.ToolCancelBooking,
			Description: "Cancels an existing booking by its ID.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"booking_id": {Type: genai.TypeString}},
				Required:   []string{"booking_id"},
			},
		},
		// UI-prompting tools
		{
			Name:        models.ToolPromptChoice,
			Description: "Asks the user to select one option from a list. Use this for things like city or room type.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"label": {
						Type:        genai.TypeString,
						Description: "The question to ask the user (e.g., 'Which city would you like to stay in?').",
					},
					"options": {
						Type:        genai.TypeArray,
						Items:       &genai.Schema{Type: genai.TypeString},
						Description: "A list of options for the user to choose from.",
					},
				},
				Required: []string{"label", "options"},
			},
		},
		{
			Name:        models.ToolPromptDates,
			Description: "Asks the user to select a check-in and check-out date using a calendar.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"label": {
						Type:        genai.TypeString,
						Description: "The prompt for the user (e.g., 'Please select your check-in and check-out dates.').",
					},
				},
				Required: []string{"label"},
			},
		},
		{
			Name:        models.ToolPromptGuests,
			Description: "Asks the user to specify the number of guests.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"label": {
						Type:        genai.TypeString,
						Description: "The prompt for the user (e.g., 'How many guests will be staying?').",
					},
				},
				Required: []string{"label"},
			},
		},
		{
			Name:        models.ToolDisplayConfirmation,
			Description: "Shows a visual confirmation receipt to the user after a successful booking.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"booking": {
						Type:        genai.TypeObject,
						Description: "The full booking object containing all details.",
						Properties: map[string]*genai.Schema{
							"booking_id": {Type: genai.TypeString},
							"hotel_name": {Type: genai.TypeString},
							"check_in":   {Type: genai.TypeString},
							"check_out":  {Type: genai.TypeString},
							"guests":     {Type: genai.TypeNumber},
							"name":       {Type: genai.TypeString},
							"email":      {Type: genai.TypeString},
							"room_type":  {Type: genai.TypeString},
						},
					},
				},
				Required: []string{"booking"},
			},
		},
	}
}
