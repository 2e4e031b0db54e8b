package notification

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	KindSubmitted = "request_submitted"
	KindValidated = "request_validated"
	KindRefused   = "request_refused"
	KindCancelled = "request_cancelled"
)

const (
	periodAM = "AM"
	periodPM = "PM"
)

// Request is the snapshot of a detachment request as the formatter
// needs it; the caller maps its own record into this shape.
type Request struct {
	ID             string
	ApplicantName  string
	ApplicantEmail string
	Entity         string
	Place          string
	DateFrom       time.Time
	DateTo         time.Time
	StartPeriod    string
	EndPeriod      string
	Days           float64
	Type           string
	ManagerEmail   string
	HREmail        string
	Comment        string
}

// Directive is one rendered email, ready for the mail sender.
type Directive struct {
	Kind    string   `json:"kind"`
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Formatter renders the French notification emails of the detachment
// workflow. All output is plain text.
type Formatter struct {
	stakeholders []string
}

// NewFormatter takes the fixed stakeholder addresses copied on every
// submission and validation email.
func NewFormatter(stakeholders []string) *Formatter {
	return &Formatter{stakeholders: stakeholders}
}

// FormatSpan renders the leave span the way it appears in emails:
// "le 15/03/2024", "le 15/03/2024 (matin)",
// "du 01/03/2024 au 05/03/2024 (début : après-midi) (fin : matin)".
func FormatSpan(r Request) string {
	from := r.DateFrom.Format("02/01/2006")
	to := r.DateTo.Format("02/01/2006")

	if from == to {
		switch {
		case r.StartPeriod == periodAM && r.EndPeriod == periodAM:
			return "le " + from + " (matin)"
		case r.StartPeriod == periodPM && r.EndPeriod == periodPM:
			return "le " + from + " (après-midi)"
		default:
			return "le " + from
		}
	}

	span := "du " + from + " au " + to
	if r.StartPeriod == periodPM {
		span += " (début : après-midi)"
	}
	if r.EndPeriod == periodAM {
		span += " (fin : matin)"
	}
	return span
}

// FormatDays renders a day count with a decimal comma: "0,5 jour",
// "1 jour", "4 jours". The plural starts at 2 per French usage.
func FormatDays(days float64) string {
	n := strings.ReplaceAll(strconv.FormatFloat(days, 'f', -1, 64), ".", ",")
	unit := "jour"
	if days >= 2 {
		unit = "jours"
	}
	return n + " " + unit
}

func (f *Formatter) Submitted(r Request) Directive {
	var b strings.Builder
	b.WriteString("Bonjour,\n\n")
	b.WriteString("Une nouvelle demande de détachement vient d'être déposée :\n\n")
	fmt.Fprintf(&b, "Demandeur : %s (%s)\n", r.ApplicantName, r.ApplicantEmail)
	fmt.Fprintf(&b, "Entité : %s\n", r.Entity)
	fmt.Fprintf(&b, "Lieu : %s\n", r.Place)
	fmt.Fprintf(&b, "Période : %s\n", FormatSpan(r))
	fmt.Fprintf(&b, "Durée : %s\n", FormatDays(r.Days))
	fmt.Fprintf(&b, "Type : %s\n", r.Type)
	fmt.Fprintf(&b, "Responsable : %s\n", r.ManagerEmail)
	fmt.Fprintf(&b, "Service RH : %s\n", r.HREmail)
	if r.Comment != "" {
		fmt.Fprintf(&b, "Commentaire : %s\n", r.Comment)
	}
	b.WriteString("\nCette demande est en attente de validation.\n")

	return Directive{
		Kind:    KindSubmitted,
		To:      append([]string(nil), f.stakeholders...),
		Cc:      []string{r.ApplicantEmail},
		Subject: fmt.Sprintf("Nouvelle demande de détachement de %s (%s)", r.ApplicantName, r.Entity),
		Body:    b.String(),
	}
}

func (f *Formatter) Validated(r Request, adminName string) Directive {
	var b strings.Builder
	b.WriteString("Bonjour,\n\n")
	fmt.Fprintf(&b, "La demande de détachement de %s (%s) a été validée :\n\n", r.ApplicantName, r.Entity)
	fmt.Fprintf(&b, "Lieu : %s\n", r.Place)
	fmt.Fprintf(&b, "Période : %s\n", FormatSpan(r))
	fmt.Fprintf(&b, "Durée : %s\n", FormatDays(r.Days))
	fmt.Fprintf(&b, "Type : %s\n", r.Type)
	fmt.Fprintf(&b, "\nValidé par %s.\n", adminName)

	to := []string{r.ManagerEmail, r.HREmail}
	to = append(to, f.stakeholders...)

	return Directive{
		Kind:    KindValidated,
		To:      to,
		Cc:      []string{r.ApplicantEmail},
		Subject: fmt.Sprintf("Demande de détachement validée : %s, %s", r.ApplicantName, FormatSpan(r)),
		Body:    b.String(),
	}
}

func (f *Formatter) Refused(r Request, reason string) Directive {
	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour %s,\n\n", r.ApplicantName)
	fmt.Fprintf(&b, "Votre demande de détachement (%s) a été refusée.\n\n", FormatSpan(r))
	fmt.Fprintf(&b, "Motif : %s\n", reason)
	b.WriteString("\nCordialement.\n")

	return Directive{
		Kind:    KindRefused,
		To:      []string{r.ApplicantEmail},
		Subject: "Votre demande de détachement a été refusée",
		Body:    b.String(),
	}
}

func (f *Formatter) Cancelled(r Request, reason string) Directive {
	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour %s,\n\n", r.ApplicantName)
	fmt.Fprintf(&b, "Votre demande de détachement (%s) a été annulée.\n\n", FormatSpan(r))
	fmt.Fprintf(&b, "Motif : %s\n", reason)
	b.WriteString("\nCordialement.\n")

	return Directive{
		Kind:    KindCancelled,
		To:      []string{r.ApplicantEmail},
		Subject: "Votre demande de détachement a été annulée",
		Body:    b.String(),
	}
}
