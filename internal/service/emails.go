package service

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/frontdesk/gatepass/internal/domain"
)

var inviteHTMLTmpl = template.Must(template.New("invite").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Your Visitor QR Code</title>
    <style>
      body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
      .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
      .content { background: #fff; padding: 30px; border: 1px solid #e1e5e9; border-radius: 0 0 10px 10px; }
      .qr-container { text-align: center; margin: 30px 0; padding: 30px; background: #f8f9fa; border-radius: 10px; border: 2px dashed #dee2e6; }
      .details { background: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0; }
      .detail-row { display: flex; justify-content: space-between; padding: 8px 0; border-bottom: 1px solid #e9ecef; }
      .label { font-weight: 600; color: #495057; }
      .value { color: #6c757d; }
      .instructions { background: #e7f3ff; border-left: 4px solid #007bff; padding: 20px; margin: 20px 0; }
      .footer { text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #e1e5e9; color: #6c757d; font-size: 14px; }
    </style>
  </head>
  <body>
    <div class="header">
      <h1 style="margin:0; font-size: 28px;">🎫 Your Visitor QR Code</h1>
      <p style="margin: 10px 0 0 0; font-size: 16px; opacity: 0.9;">Ready for your visit</p>
    </div>
    <div class="content">
      <p>Hello <strong>{{.Visitor.VisitorName}}</strong>,</p>
      <p>Your visitor QR code has been generated and is ready for your upcoming visit. Please save this email and present the QR code below when you arrive.</p>
      <div class="qr-container">
        <h3 style="margin-top: 0; color: #495057;">📱 Your QR Code</h3>
        <img src="{{.QRCodeDataURL}}" alt="Visitor QR Code" style="max-width: 250px; height: auto; display: block; margin: 20px auto;" />
        <p style="color: #6c757d; font-size: 14px; margin-bottom: 0;">Show this QR code to guest services upon arrival</p>
      </div>
      <div class="details">
        <h4 style="margin-top: 0; color: #495057;">📋 Visit Details</h4>
        <div class="detail-row"><span class="label">Visitor Name:</span><span class="value">{{.Visitor.VisitorName}}</span></div>
        <div class="detail-row"><span class="label">Company:</span><span class="value">{{.Visitor.VisitorCompany}}</span></div>
        <div class="detail-row"><span class="label">Purpose:</span><span class="value">{{.Visitor.Purpose}}</span></div>
        <div class="detail-row"><span class="label">Host Contact:</span><span class="value">{{.Visitor.HostEmail}}</span></div>
        {{if .Visitor.MeetingDate}}<div class="detail-row"><span class="label">Meeting Date:</span><span class="value">{{.Visitor.MeetingDate}}{{if .Visitor.MeetingTime}} {{.Visitor.MeetingTime}}{{end}}</span></div>{{end}}
      </div>
      <div class="instructions">
        <h4 style="margin-top: 0; color: #007bff;">📍 Check-in Instructions</h4>
        <ol style="margin: 10px 0; padding-left: 20px;">
          <li>Save this email or take a screenshot of the QR code</li>
          <li>Arrive at the designated location</li>
          <li>Present your QR code to guest services</li>
          <li>Wait for confirmation - your host will be automatically notified</li>
        </ol>
      </div>
      <p style="color: #6c757d; font-size: 14px; margin-top: 30px;">
        <strong>Note:</strong> This QR code contains your visit information and should not be shared with others.
      </p>
    </div>
    <div class="footer">
      <p>QR Code Visitor System • Secure • Professional • Efficient</p>
      <p style="font-size: 12px; margin-top: 10px;">This is an automated message. Please do not reply to this email.</p>
    </div>
  </body>
</html>
`))

var checkInHTMLTmpl = template.Must(template.New("checkin").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Visitor Check-In Notification</title>
    <style>
      body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 20px; background-color: #f5f5f5; }
      .container { max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; }
      .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px 20px; text-align: center; }
      .content { padding: 30px 20px; }
      .alert { background: #d4edda; border: 1px solid #c3e6cb; color: #155724; padding: 15px; border-radius: 6px; margin-bottom: 20px; }
      .details { background: #f8f9fa; border-radius: 6px; padding: 20px; margin: 20px 0; }
      .detail-row { display: flex; justify-content: space-between; margin-bottom: 10px; padding-bottom: 10px; border-bottom: 1px solid #e9ecef; }
      .label { font-weight: 600; color: #495057; }
      .value { color: #6c757d; }
      .notes { background: #fff3cd; border: 1px solid #ffeaa7; padding: 15px; border-radius: 6px; margin: 15px 0; }
      .footer { background: #f8f9fa; padding: 20px; text-align: center; font-size: 12px; color: #6c757d; }
    </style>
  </head>
  <body>
    <div class="container">
      <div class="header">
        <h1>✅ Visitor Check-In Notification</h1>
        <p>Your visitor has successfully checked in</p>
      </div>
      <div class="content">
        <div class="alert">
          <strong>{{.Visitor.VisitorName}}</strong> from <strong>{{.Visitor.VisitorCompany}}</strong> has checked in to the building.
        </div>
        <div class="details">
          <h3 style="margin-top: 0; color: #495057;">Visitor Details</h3>
          <div class="detail-row"><span class="label">Visitor Name:</span><span class="value">{{.Visitor.VisitorName}}</span></div>
          <div class="detail-row"><span class="label">Company:</span><span class="value">{{.Visitor.VisitorCompany}}</span></div>
          <div class="detail-row"><span class="label">Check-In Time:</span><span class="value">{{.CheckedInTime}}</span></div>
          <div class="detail-row"><span class="label">Purpose of Visit:</span><span class="value">{{.Visitor.Purpose}}</span></div>
        </div>
        {{if or .IdentificationNotes .LocationNotes}}
        <div class="notes">
          <h4 style="margin-top: 0; color: #856404;">Additional Notes:</h4>
          {{if .IdentificationNotes}}<p><strong>Identification:</strong> {{.IdentificationNotes}}</p>{{end}}
          {{if .LocationNotes}}<p><strong>Location:</strong> {{.LocationNotes}}</p>{{end}}
        </div>
        {{end}}
        <p style="color: #6c757d; font-size: 14px;">
          This is an automated notification from the QR Code Visitor System.
          Your visitor has been successfully checked in and should now be able to proceed to your meeting location.
        </p>
      </div>
      <div class="footer">
        <p>QR Code Visitor System • Secure • Professional • Efficient</p>
        <p>This email was sent automatically. Please do not reply to this message.</p>
      </div>
    </div>
  </body>
</html>
`))

type inviteEmailData struct {
	Visitor       *domain.VisitorRecord
	QRCodeDataURL string
}

func renderInviteEmail(rec *domain.VisitorRecord, qrCodeDataURL string) (subject, html, text string, err error) {
	subject = "Your Visitor QR Code - " + rec.Purpose

	var sb strings.Builder
	if err = inviteHTMLTmpl.Execute(&sb, inviteEmailData{Visitor: rec, QRCodeDataURL: qrCodeDataURL}); err != nil {
		return "", "", "", fmt.Errorf("render invite email: %w", err)
	}
	html = sb.String()

	text = fmt.Sprintf(`Your Visitor QR Code

Hello %s,

Your visitor QR code has been generated for your upcoming visit.

Visit Details:
- Visitor Name: %s
- Company: %s
- Purpose: %s
- Host Contact: %s

Check-in Instructions:
1. Save this email or take a screenshot of the QR code
2. Arrive at the designated location
3. Present your QR code to guest services
4. Wait for confirmation - your host will be automatically notified

Note: This QR code contains your visit information and should not be shared with others.

---
QR Code Visitor System • Secure • Professional • Efficient
This is an automated message. Please do not reply to this email.
`, rec.VisitorName, rec.VisitorName, rec.VisitorCompany, rec.Purpose, rec.HostEmail)

	return subject, html, text, nil
}

type checkInEmailData struct {
	Visitor             *domain.VisitorRecord
	CheckedInTime       string
	IdentificationNotes string
	LocationNotes       string
}

func renderCheckInEmail(ev *domain.CheckInEvent) (subject, html, text string, err error) {
	subject = "Visitor Check-In Notification - " + ev.Visitor.VisitorName
	checkedInTime := ev.CheckedInAt.Local().Format(time.RFC1123)

	var sb strings.Builder
	data := checkInEmailData{
		Visitor:             &ev.Visitor,
		CheckedInTime:       checkedInTime,
		IdentificationNotes: ev.IdentificationNotes,
		LocationNotes:       ev.LocationNotes,
	}
	if err = checkInHTMLTmpl.Execute(&sb, data); err != nil {
		return "", "", "", fmt.Errorf("render check-in email: %w", err)
	}
	html = sb.String()

	var notes strings.Builder
	if ev.IdentificationNotes != "" {
		notes.WriteString("Identification Notes: " + ev.IdentificationNotes + "\n")
	}
	if ev.LocationNotes != "" {
		notes.WriteString("Location Notes: " + ev.LocationNotes + "\n")
	}

	text = fmt.Sprintf(`Visitor Check-In Notification

%s from %s has checked in to the building.

Visitor Details:
- Name: %s
- Company: %s
- Check-In Time: %s
- Purpose: %s

%s
This is an automated notification from the QR Code Visitor System.

---
QR Code Visitor System • Secure • Professional • Efficient
`, ev.Visitor.VisitorName, ev.Visitor.VisitorCompany,
		ev.Visitor.VisitorName, ev.Visitor.VisitorCompany, checkedInTime, ev.Visitor.Purpose,
		notes.String())

	return subject, html, text, nil
}
