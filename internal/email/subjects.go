package email

const subjectQualityAlertFmt = "Data quality alert: %s scored %d/100"
