package telegram

const (
	msgRestricted    = "This bot is restricted to specific groups."
	msgGenericError  = "An error occurred. Please try again later."
	msgRideUsage     = "Usage: /ride [Location] [Destination] [Time] [Purpose (class/switch/closed/other)]"
	msgBadPurpose    = "Purpose must be one of: class, switch, closed, other."
	msgBadTime       = "Invalid time format. Please provide time in HH:MM format (e.g., 14:30)."
	msgPastTime      = "You cannot request a ride in the past. Please provide a valid time."
	msgRideCreated   = "Ride requested from %s to %s at %s for %s. Your ride ID is %d."
	msgDuplicate     = "You already have a ride booked for %s. Please cancel the current request before booking a new one."
	msgCompleteUsage = "Usage: /complete [RideID]"
	msgNoSuchRide    = "No such ride ID %d exists."
	msgNotYours      = "No such ride ID %d exists or it does not belong to you."
	msgAlreadyDone   = "Ride request %d has already been marked as completed."
	msgCompleted     = "Ride request %d has been marked as completed."
	msgCancelDone    = "Ride request %d has been completed already hence it cannot be canceled."
	msgBadCancelID   = "Invalid Ride ID. Please provide a valid ride ID to cancel."
	msgCanceled      = "Ride request (ID: %d) has been canceled."
	msgCanceledLast  = "Your most recent ride request (ID: %d) has been canceled."
	msgNothingToStop = "You have no pending ride requests to cancel."
	msgNoRides       = "You have no ride requests today."

	msgStart = "Hi %s! Use /ride to request a shuttle.\n\n" +
		"Format: /ride [Location] [Destination] [Time] [Purpose (class/switch/closed/other)]"

	msgHelp = "Hi! I'm the Shuttle Bot. Here's how you can use me:\n\n" +
		"/start - Start the bot and see the welcome message.\n" +
		"/ride [Location] [Destination] [Time] [Purpose] - Request a shuttle ride. Example: /ride Library Dormitory 14:00 class\n" +
		"  Reply to someone's message with /ride to book for them.\n" +
		"/cancel [RideID] (optional) - Cancel your most recent ride or a specific ride by ID. Example: /cancel or /cancel 123\n" +
		"/complete [RideID] - Manually mark a ride as completed. Example: /complete 123\n" +
		"/status - Show your rides for today.\n" +
		"/help - Show this help message.\n" +
		"Note: The purpose can be one of the following: class, switch, closed, other.\n"

	// Рассылки начала и конца рабочего дня.
	MsgWorkdayStartDrivers  = "🚗 Work day: Notification system started! Get ready for a productive day ahead. 🌟"
	MsgWorkdayEndDrivers    = "🌙 Job ended for today. Thank you for your hard work! See you tomorrow. 👋"
	MsgWorkdayStartStudents = "🚌 Shuttle service is now available! You can start requesting rides. 🌟"
	MsgWorkdayEndStudents   = "🚌 Shuttle service has ended for today. See you again tomorrow! 👋"
)
