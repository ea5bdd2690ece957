package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

var (
	emailFrom     = os.Getenv("EMAIL_FROM")
	emailPassword = os.Getenv("EMAIL_PASSWORD")
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	companyName   = "RwandaShareRide"
	baseURL       = os.Getenv("BASE_URL")
)

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #1a73e8; margin: 0;">RwandaShareRide</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>© 2025 RwandaShareRide. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

func sendEmail(to []string, subject, body string) error {
	if emailFrom == "" || emailPassword == "" || smtpHost == "" || smtpPort == "" {
		return fmt.Errorf("email configuration not set")
	}

	// Headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", companyName, emailFrom)
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"
	headers["X-Mailer"] = "RwandaShareRide-Mailer"

	// Build message
	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	// Authentication
	auth := smtp.PlainAuth("", emailFrom, emailPassword, smtpHost)

	// Send email
	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, emailFrom, to, []byte(message))
	if err != nil {
		log.Printf("Failed to send email: %v", err)
		return err
	}

	log.Printf("Successfully sent email to recipients: %v", to)
	return nil
}

// SendWelcomeEmail greets a newly registered user.
func SendWelcomeEmail(email, firstName string) error {
	subject := "Welcome to RwandaShareRide"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Welcome Aboard</h1>
					<p>Hello %s,</p>
					<p>Your RwandaShareRide account has been created. You can now post trips or request rides across the country.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/login" style="background-color: #1a73e8; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Login to RwandaShareRide</a>
					</div>
					<p>Best regards,<br>The RwandaShareRide Team</p>
				</div>`+emailFooter,
		firstName, baseURL)

	return sendEmail([]string{email}, subject, body)
}

// SendPasswordResetEmail carries the single-use reset link.
func SendPasswordResetEmail(email, token string) error {
	subject := "Password Reset - RwandaShareRide"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Password Reset</h1>
					<p>Hello,</p>
					<p>We received a request to reset your password. Click the button below to choose a new one. The link expires in one hour.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/reset-password?token=%s" style="background-color: #1a73e8; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Reset Password</a>
					</div>
					<p>If you did not request this, you can safely ignore this email.</p>
					<p>Best regards,<br>The RwandaShareRide Team</p>
				</div>`+emailFooter,
		baseURL, token)

	return sendEmail([]string{email}, subject, body)
}

// SendTripBookedEmail tells a driver that a passenger booked their trip.
func SendTripBookedEmail(driverEmail, driverName, passengerName, origin, destination, travelDate string) error {
	subject := "RwandaShareRide - Trip Booked"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">New Booking</h1>
					<p>Hello %s,</p>
					<p><strong>%s</strong> has booked a seat on your trip from <strong>%s</strong> to <strong>%s</strong> on <strong>%s</strong>.</p>
					<p>Please log in to approve or decline this booking.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/login" style="background-color: #1a73e8; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Login to RwandaShareRide</a>
					</div>
					<p>Best regards,<br>The RwandaShareRide Team</p>
				</div>`+emailFooter,
		driverName, passengerName, origin, destination, travelDate, baseURL)

	return sendEmail([]string{driverEmail}, subject, body)
}

// SendRequestApprovedEmail tells a passenger their ride request was taken
// and approved by a driver.
func SendRequestApprovedEmail(passengerEmail, passengerName, driverName, origin, destination, travelDate string) error {
	subject := "RwandaShareRide - Ride Request Approved"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Ride Request Approved</h1>
					<p>Hello %s,</p>
					<p>Great news! Driver <strong>%s</strong> has taken your ride request from <strong>%s</strong> to <strong>%s</strong> on <strong>%s</strong>.</p>
					<p>Your seats are reserved. Please be ready on the travel date. Safe travels!</p>
					<p>Best regards,<br>The RwandaShareRide Team</p>
				</div>`+emailFooter,
		passengerName, driverName, origin, destination, travelDate)

	return sendEmail([]string{passengerEmail}, subject, body)
}

// SendBookingApprovedEmail tells a passenger their direct booking was approved.
func SendBookingApprovedEmail(passengerEmail, passengerName, driverName, origin, destination, travelDate string) error {
	subject := "RwandaShareRide - Booking Approved"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Approved</h1>
					<p>Hello %s,</p>
					<p>Your booking for the trip from <strong>%s</strong> to <strong>%s</strong> with driver <strong>%s</strong> has been approved.</p>
					<p>Your driver will pick you up on <strong>%s</strong>. Please be ready for a smooth journey.</p>
					<p>Best regards,<br>The RwandaShareRide Team</p>
				</div>`+emailFooter,
		passengerName, origin, destination, driverName, travelDate)

	return sendEmail([]string{passengerEmail}, subject, body)
}

// SendBookingDeclinedEmail tells a passenger their booking was declined.
func SendBookingDeclinedEmail(passengerEmail, passengerName, driverName string) error {
	subject := "RwandaShareRide - Booking Declined"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Declined</h1>
					<p>Hello %s,</p>
					<p>Unfortunately, your booking request for the trip with <strong>%s</strong> has been declined.</p>
					<p>Don't worry! You can try booking another available trip.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/trips" style="background-color: #1a73e8; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Find Another Trip</a>
					</div>
					<p>Best regards,<br>The RwandaShareRide Team</p>
				</div>`+emailFooter,
		passengerName, driverName, baseURL)

	return sendEmail([]string{passengerEmail}, subject, body)
}

// SendSubscriptionActivatedEmail confirms a driver subscription.
func SendSubscriptionActivatedEmail(email, firstName, endDate string) error {
	subject := "RwandaShareRide - Subscription Activated"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Subscription Activated</h1>
					<p>Hello %s,</p>
					<p>Your subscription has been successfully activated and runs until <strong>%s</strong>. You can now post trips.</p>
					<p>Best regards,<br>The RwandaShareRide Team</p>
				</div>`+emailFooter,
		firstName, endDate)

	return sendEmail([]string{email}, subject, body)
}
