package email

import (
	"strings"
	"testing"
)

func TestQualityAlertContent(t *testing.T) {
	subject, body, err := qualityAlertContent(QualityAlert{
		ClientName: "Acme <Ltda>",
		Score:      40,
		Threshold:  60,
		Issues:     []string{"12 leads without a usable phone"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "Data quality alert: Acme <Ltda> scored 40/100" {
		t.Fatalf("unexpected subject %q", subject)
	}
	if !strings.Contains(body, "Acme &lt;Ltda&gt;") {
		t.Fatal("client name must be html escaped")
	}
	if !strings.Contains(body, "<li>12 leads without a usable phone</li>") {
		t.Fatalf("issues missing from body: %s", body)
	}
}
