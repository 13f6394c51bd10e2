package weather

import (
	"html"
	"strings"

	"github.com/i474232898/weather-lookup/internal/apperrors"
)

const (
	historyTitle       = "Historial de Búsquedas"
	historyEmptyNotice = "No hay búsquedas registradas para tu IP."
	historyTimeLayout  = "2006-01-02 15:04:05"
)

// RenderCurrent formats a current weather snapshot.
func RenderCurrent(loc Location, cw CurrentConditions) string {
	var b strings.Builder
	b.WriteString("<h3>Tiempo Actual en " + escape(loc.DisplayName) + "</h3>")
	b.WriteString("<p><strong>Temperatura:</strong> " + formatNumber(cw.Temperature) + "°C</p>")
	b.WriteString("<p><strong>Viento:</strong> " + formatNumber(cw.WindSpeed) + " km/h</p>")
	b.WriteString("<p><strong>Hora:</strong> " + escape(cw.Time) + "</p>")
	return b.String()
}

// RenderForecast formats one line per forecast day, preserving the given order.
func RenderForecast(loc Location, days []DailyForecast) string {
	var b strings.Builder
	b.WriteString("<h3>Pronóstico a 15 días para " + escape(loc.DisplayName) + "</h3>")
	for _, d := range days {
		b.WriteString("<p><strong>" + escape(d.Date) + ":</strong> Máx: " +
			formatNumber(d.TempMax) + "°C, Mín: " + formatNumber(d.TempMin) + "°C</p>")
	}
	return b.String()
}

// RenderHistory formats stored search events in the order received.
// Stored results are markup produced by this package and are emitted as-is.
func RenderHistory(events []SearchEvent) string {
	var b strings.Builder
	b.WriteString("<h3>" + historyTitle + "</h3>")
	if len(events) == 0 {
		b.WriteString("<p>" + historyEmptyNotice + "</p>")
		return b.String()
	}
	for _, e := range events {
		b.WriteString(`<div class="history-item">`)
		b.WriteString("<p><strong>Fecha:</strong> " + e.Timestamp.Format(historyTimeLayout) + "</p>")
		b.WriteString("<p><strong>Ciudad:</strong> " + escape(e.City) + "</p>")
		b.WriteString("<p><strong>Tipo:</strong> " + escape(string(e.SearchType)) + "</p>")
		b.WriteString("<p><strong>Resultado:</strong> " + e.Result + "</p>")
		b.WriteString("<hr></div>")
	}
	return b.String()
}

// RenderHistoryError formats a failure to load the history.
func RenderHistoryError(err error) string {
	return "Error al obtener el historial: " + apperrors.Message(err)
}

// RenderError formats a failed action for display.
// Validation problems are shown as-is; everything else gets an "Error: " prefix.
func RenderError(err error) string {
	if apperrors.IsKind(err, apperrors.KindValidation) {
		return apperrors.Message(err)
	}
	return "Error: " + apperrors.Message(err)
}

// RenderSearching is the progress line shown while a place is being resolved.
func RenderSearching(city string) string {
	return `Buscando la localidad "` + city + `"...`
}

func escape(s string) string {
	return html.EscapeString(s)
}
