package service_test

import (
	"bytes"
	"testing"

	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/service"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func zapNop() *zap.Logger { return zap.NewNop() }

func TestClassify(t *testing.T) {
	eicar := `X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

	tests := []struct {
		name     string
		data     []byte
		mime     string
		verdict  model.ScanVerdict
		risk     model.RiskLevel
		wantFlag string
	}{
		{"empty object", nil, "text/plain", model.VerdictSkipped, model.RiskLow, service.FlagEmpty},
		{"plain text", []byte("quarterly numbers attached"), "text/plain", model.VerdictClean, model.RiskLow, ""},
		{"eicar", []byte(eicar), "text/plain", model.VerdictMalicious, model.RiskHigh, service.FlagEICAR},
		{"pe executable", []byte("MZ\x90\x00\x03\x00"), "application/pdf", model.VerdictMalicious, model.RiskHigh, service.FlagPEExecutable},
		{"elf executable", []byte("\x7fELF\x02\x01\x01"), "", model.VerdictMalicious, model.RiskHigh, service.FlagELFExecutable},
		{"shebang", []byte("#!/bin/sh\nrm -rf /\n"), "text/plain", model.VerdictMalicious, model.RiskHigh, service.FlagShebangScript},
		{"pdf javascript", []byte("%PDF-1.7\n1 0 obj << /OpenAction 2 0 R /JS (app.alert(1)) >>"), "application/pdf", model.VerdictSuspicious, model.RiskMedium, service.FlagPDFJavaScript},
		{"clean pdf", []byte("%PDF-1.7\n1 0 obj << /Type /Catalog >>"), "application/pdf", model.VerdictClean, model.RiskLow, ""},
		{"office macro", []byte("PK\x03\x04....word/vbaProject.bin...."), "application/zip", model.VerdictSuspicious, model.RiskMedium, service.FlagOfficeMacro},
		{"archive with exe", []byte("PK\x03\x04....setup.exe...."), "application/zip", model.VerdictSuspicious, model.RiskMedium, service.FlagArchiveExecutable},
		{"html script", []byte("<html><body><script>alert(1)</script></body></html>"), "text/html", model.VerdictSuspicious, model.RiskMedium, service.FlagHTMLScript},
		{"image that is html", []byte("<html><body>hi</body></html>"), "image/png", model.VerdictSuspicious, model.RiskMedium, service.FlagMimeMismatch},
		{"real png", png, "image/png", model.VerdictClean, model.RiskLow, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := service.Classify(tt.data, tt.mime, false)
			assert.Equal(t, tt.verdict, outcome.Verdict)
			assert.Equal(t, tt.risk, outcome.RiskLevel)
			assert.Len(t, outcome.Sha256, 64)
			if tt.wantFlag != "" {
				assert.Contains(t, outcome.Flags, tt.wantFlag)
			} else {
				assert.Empty(t, outcome.Flags)
			}
		})
	}
}

func TestClassify_TruncatedFlag(t *testing.T) {
	outcome := service.Classify([]byte("hello"), "text/plain", true)
	assert.Equal(t, model.VerdictClean, outcome.Verdict)
	assert.Equal(t, []string{service.FlagTruncated}, outcome.Flags)
}

func TestScanOutcome_Mapping(t *testing.T) {
	tests := []struct {
		verdict   model.ScanVerdict
		jobStatus model.ScanJobStatus
		docStatus model.ScanStatus
	}{
		{model.VerdictMalicious, model.JobInfected, model.ScanRisky},
		{model.VerdictSuspicious, model.JobClean, model.ScanRisky},
		{model.VerdictClean, model.JobClean, model.ScanClean},
		{model.VerdictSkipped, model.JobSkipped, model.ScanClean},
	}
	for _, tt := range tests {
		outcome := model.ScanOutcome{Verdict: tt.verdict}
		assert.Equal(t, tt.jobStatus, outcome.JobStatus(), string(tt.verdict))
		assert.Equal(t, tt.docStatus, outcome.DocumentScanStatus(), string(tt.verdict))
	}
}
