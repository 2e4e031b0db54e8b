package notification_test

import (
	"testing"
	"time"

	"github.com/SebastienDelgado/detachements-backend/internal/notification"

	"github.com/stretchr/testify/assert"
)

func sampleRequest() notification.Request {
	return notification.Request{
		ID:             "8d9f8d4e-5c1a-4a8e-9f20-1f0a5f2ab111",
		ApplicantName:  "Marie Dupont",
		ApplicantEmail: "marie.dupont@exemple.fr",
		Entity:         "DSI Lyon",
		Place:          "Siège social, Paris",
		DateFrom:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		DateTo:         time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		StartPeriod:    "PM",
		EndPeriod:      "AM",
		Days:           4,
		Type:           "21B",
		ManagerEmail:   "chef.service@exemple.fr",
		HREmail:        "rh@exemple.fr",
		Comment:        "Réunion CSE",
	}
}

func TestFormatSpan(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		from, to   time.Time
		start, end string
		want       string
	}{
		{"single full day", day, day, "FULL", "FULL", "le 15/03/2024"},
		{"single morning", day, day, "AM", "AM", "le 15/03/2024 (matin)"},
		{"single afternoon", day, day, "PM", "PM", "le 15/03/2024 (après-midi)"},
		{"single morning to afternoon", day, day, "AM", "PM", "le 15/03/2024"},
		{"multi day full", day, day.AddDate(0, 0, 3), "FULL", "FULL", "du 15/03/2024 au 18/03/2024"},
		{"multi day afternoon start", day, day.AddDate(0, 0, 3), "PM", "FULL", "du 15/03/2024 au 18/03/2024 (début : après-midi)"},
		{"multi day morning end", day, day.AddDate(0, 0, 3), "FULL", "AM", "du 15/03/2024 au 18/03/2024 (fin : matin)"},
		{"multi day both halves", day, day.AddDate(0, 0, 3), "PM", "AM", "du 15/03/2024 au 18/03/2024 (début : après-midi) (fin : matin)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := notification.FormatSpan(notification.Request{
				DateFrom:    tc.from,
				DateTo:      tc.to,
				StartPeriod: tc.start,
				EndPeriod:   tc.end,
			})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatDays(t *testing.T) {
	tests := []struct {
		days float64
		want string
	}{
		{0.5, "0,5 jour"},
		{1, "1 jour"},
		{1.5, "1,5 jour"},
		{2, "2 jours"},
		{2.5, "2,5 jours"},
		{4, "4 jours"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, notification.FormatDays(tc.days))
		})
	}
}

func TestFormatter_Submitted(t *testing.T) {
	stakeholders := []string{"cse@exemple.fr", "rh-siege@exemple.fr"}
	f := notification.NewFormatter(stakeholders)

	t.Run("success", func(t *testing.T) {
		d := f.Submitted(sampleRequest())

		assert.Equal(t, notification.KindSubmitted, d.Kind)
		assert.Equal(t, stakeholders, d.To)
		assert.Equal(t, []string{"marie.dupont@exemple.fr"}, d.Cc)
		assert.Equal(t, "Nouvelle demande de détachement de Marie Dupont (DSI Lyon)", d.Subject)
		assert.Contains(t, d.Body, "Demandeur : Marie Dupont (marie.dupont@exemple.fr)")
		assert.Contains(t, d.Body, "Entité : DSI Lyon")
		assert.Contains(t, d.Body, "Lieu : Siège social, Paris")
		assert.Contains(t, d.Body, "Période : du 01/03/2024 au 05/03/2024 (début : après-midi) (fin : matin)")
		assert.Contains(t, d.Body, "Durée : 4 jours")
		assert.Contains(t, d.Body, "Type : 21B")
		assert.Contains(t, d.Body, "Responsable : chef.service@exemple.fr")
		assert.Contains(t, d.Body, "Service RH : rh@exemple.fr")
		assert.Contains(t, d.Body, "Commentaire : Réunion CSE")
		assert.Contains(t, d.Body, "Cette demande est en attente de validation.")
	})

	t.Run("without comment", func(t *testing.T) {
		r := sampleRequest()
		r.Comment = ""

		d := f.Submitted(r)

		assert.NotContains(t, d.Body, "Commentaire")
	})

	t.Run("recipients are copied not shared", func(t *testing.T) {
		d := f.Submitted(sampleRequest())
		d.To[0] = "autre@exemple.fr"

		assert.Equal(t, "cse@exemple.fr", stakeholders[0])
	})
}

func TestFormatter_Validated(t *testing.T) {
	f := notification.NewFormatter([]string{"cse@exemple.fr"})

	d := f.Validated(sampleRequest(), "Sophie Martin")

	assert.Equal(t, notification.KindValidated, d.Kind)
	assert.Equal(t, []string{"chef.service@exemple.fr", "rh@exemple.fr", "cse@exemple.fr"}, d.To)
	assert.Equal(t, []string{"marie.dupont@exemple.fr"}, d.Cc)
	assert.Equal(t, "Demande de détachement validée : Marie Dupont, du 01/03/2024 au 05/03/2024 (début : après-midi) (fin : matin)", d.Subject)
	assert.Contains(t, d.Body, "La demande de détachement de Marie Dupont (DSI Lyon) a été validée :")
	assert.Contains(t, d.Body, "Durée : 4 jours")
	assert.Contains(t, d.Body, "Validé par Sophie Martin.")
}

func TestFormatter_Refused(t *testing.T) {
	f := notification.NewFormatter([]string{"cse@exemple.fr"})

	d := f.Refused(sampleRequest(), "Effectif insuffisant sur la période.")

	assert.Equal(t, notification.KindRefused, d.Kind)
	assert.Equal(t, []string{"marie.dupont@exemple.fr"}, d.To)
	assert.Empty(t, d.Cc)
	assert.Equal(t, "Votre demande de détachement a été refusée", d.Subject)
	assert.Contains(t, d.Body, "Bonjour Marie Dupont,")
	assert.Contains(t, d.Body, "Votre demande de détachement (du 01/03/2024 au 05/03/2024 (début : après-midi) (fin : matin)) a été refusée.")
	assert.Contains(t, d.Body, "Motif : Effectif insuffisant sur la période.")
	assert.Contains(t, d.Body, "Cordialement.")
}

func TestFormatter_Cancelled(t *testing.T) {
	f := notification.NewFormatter([]string{"cse@exemple.fr"})

	d := f.Cancelled(sampleRequest(), "Demande déposée en double.")

	assert.Equal(t, notification.KindCancelled, d.Kind)
	assert.Equal(t, []string{"marie.dupont@exemple.fr"}, d.To)
	assert.Equal(t, "Votre demande de détachement a été annulée", d.Subject)
	assert.Contains(t, d.Body, "a été annulée.")
	assert.Contains(t, d.Body, "Motif : Demande déposée en double.")
}
