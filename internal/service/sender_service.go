package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"time"

	"smartparking/internal/entities"
)

const emailTemplate = `
<html>
  <body style="font-family: sans-serif; color: #333;">
    <h2>Your reservation is {{.Status}}</h2>
    <p>Hello {{.UserName}},</p>
    <p>Your reservation at VDart Smart Parking is <strong>{{.Status}}</strong>.</p>
    <table cellpadding="4">
      <tr><td>Reservation</td><td>{{.ReservationID}}</td></tr>
      <tr><td>Spot</td><td>{{.SpotID}} ({{.SpotType}})</td></tr>
      <tr><td>From</td><td>{{.StartTime}}</td></tr>
      <tr><td>To</td><td>{{.EndTime}}</td></tr>
      <tr><td>Duration</td><td>{{.DurationHours}} hours</td></tr>
    </table>
    <p>Thank you for choosing VDart Smart Parking.</p>
    <p style="color: #999;">&copy; {{.CurrentYear}} VDart Smart Parking. All rights reserved.</p>
  </body>
</html>`

// SenderService delivers reservation emails through SendGrid. It
// implements Notifier; send failures are logged, never surfaced to the
// reservation flow.
type SenderService struct {
	tmpl *template.Template
}

func NewSenderService() *SenderService {
	return &SenderService{
		tmpl: template.Must(template.New("reservation_email").Parse(emailTemplate)),
	}
}

func (s *SenderService) ReservationConfirmed(res *Reservation) {
	s.send(res, "confirmed")
}

func (s *SenderService) ReservationCancelled(res *Reservation, message string) {
	s.send(res, message)
}

func (s *SenderService) send(res *Reservation, status string) {
	emailData := entities.ReservationEmailData{
		UserName:      res.Holder,
		ReservationID: res.ID,
		SpotID:        res.SpotID,
		SpotType:      string(res.Kind),
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
		DurationHours: res.DurationHours,
		Status:        status,
		CurrentYear:   time.Now().Year(),
	}

	subject := fmt.Sprintf("Your parking reservation is %s - Spot %d", status, res.SpotID)
	plainTextBody := fmt.Sprintf(
		"Hello %s,\n\nYour reservation at VDart Smart Parking is %s.\n\n"+
			"Reservation Details:\n"+
			"Reservation: %s\n"+
			"Spot: %d (%s)\n"+
			"From: %s\n"+
			"To: %s\n"+
			"Duration: %.1f hours\n\n"+
			"Thank you for choosing VDart Smart Parking.",
		res.Holder, status, res.ID, res.SpotID, res.Kind,
		res.StartTime, res.EndTime, res.DurationHours,
	)

	var htmlBodyBuffer bytes.Buffer
	if err := s.tmpl.Execute(&htmlBodyBuffer, emailData); err != nil {
		log.Printf("Error executing email template for reservation %s: %v", res.ID, err)
	}
	htmlBody := htmlBodyBuffer.String()

	go func(toEmail, toName string) {
		if err := SendEmailWithSendGrid(toEmail, toName, subject, plainTextBody, htmlBody); err != nil {
			log.Printf("Email delivery failed for reservation %s: %v", res.ID, err)
		}
	}(res.Email, res.Holder)
}
