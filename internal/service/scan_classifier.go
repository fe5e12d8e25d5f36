package service

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"mime"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"secure-doc-gateway/internal/model"
)

const (
	FlagEmpty             = "empty"
	FlagTruncated         = "truncated"
	FlagEncryptedTooLarge = "encrypted_too_large"
	FlagEICAR             = "eicar_test_signature"
	FlagPEExecutable      = "pe_executable"
	FlagELFExecutable     = "elf_executable"
	FlagMachOExecutable   = "macho_executable"
	FlagShebangScript     = "shebang_script"
	FlagPDFJavaScript     = "pdf_javascript"
	FlagPDFLaunch         = "pdf_launch_action"
	FlagPDFOpenAction     = "pdf_open_action"
	FlagOfficeMacro       = "office_macro"
	FlagHTMLScript        = "html_script"
	FlagArchiveExecutable = "archive_executable_entry"
	FlagMimeMismatch      = "mime_mismatch"
)

var (
	eicarSignature = []byte(`X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`)

	machOMagics = [][]byte{
		{0xfe, 0xed, 0xfa, 0xce},
		{0xfe, 0xed, 0xfa, 0xcf},
		{0xce, 0xfa, 0xed, 0xfe},
		{0xcf, 0xfa, 0xed, 0xfe},
		{0xca, 0xfe, 0xba, 0xbe},
	}

	htmlScriptPattern    = regexp.MustCompile(`(?i)<script[\s>]|javascript:|\son(load|error|click)\s*=`)
	archiveExecutableExt = regexp.MustCompile(`(?i)\.(exe|scr|bat|cmd|com|js|vbs|ps1|jar|msi|dll|lnk)\x00?`)
)

// Classify : эвристическая классификация префикса объекта. Это не антивирус,
// результат служит сигналом риска для модерации
func Classify(data []byte, declaredMime string, truncated bool) model.ScanOutcome {
	sum := sha256.Sum256(data)
	outcome := model.ScanOutcome{
		Verdict:   model.VerdictClean,
		RiskLevel: model.RiskLow,
		Sha256:    hex.EncodeToString(sum[:]),
	}

	if len(data) == 0 {
		outcome.Verdict = model.VerdictSkipped
		outcome.Flags = []string{FlagEmpty}
		return outcome
	}

	flags := map[string]bool{}
	if truncated {
		flags[FlagTruncated] = true
	}

	malicious := false
	if bytes.Contains(data, eicarSignature) {
		flags[FlagEICAR] = true
		malicious = true
	}
	switch {
	case bytes.HasPrefix(data, []byte("MZ")):
		flags[FlagPEExecutable] = true
		malicious = true
	case bytes.HasPrefix(data, []byte("\x7fELF")):
		flags[FlagELFExecutable] = true
		malicious = true
	case hasAnyPrefix(data, machOMagics):
		flags[FlagMachOExecutable] = true
		malicious = true
	case bytes.HasPrefix(data, []byte("#!")):
		flags[FlagShebangScript] = true
		malicious = true
	}

	suspicious := false
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		for marker, flag := range map[string]string{
			"/JavaScript": FlagPDFJavaScript,
			"/JS":         FlagPDFJavaScript,
			"/Launch":     FlagPDFLaunch,
			"/OpenAction": FlagPDFOpenAction,
		} {
			if bytes.Contains(data, []byte(marker)) {
				flags[flag] = true
				suspicious = true
			}
		}
	}

	if bytes.Contains(data, []byte("vbaProject.bin")) || bytes.Contains(data, []byte("_VBA_PROJECT")) {
		flags[FlagOfficeMacro] = true
		suspicious = true
	}

	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "text/html") && htmlScriptPattern.Match(data) {
		flags[FlagHTMLScript] = true
		suspicious = true
	}

	if isArchive(data) && archiveExecutableExt.Match(data) {
		flags[FlagArchiveExecutable] = true
		suspicious = true
	}

	if mimeMismatch(declaredMime, sniffed) {
		flags[FlagMimeMismatch] = true
		suspicious = true
	}

	switch {
	case malicious:
		outcome.Verdict = model.VerdictMalicious
		outcome.RiskLevel = model.RiskHigh
	case suspicious:
		outcome.Verdict = model.VerdictSuspicious
		outcome.RiskLevel = model.RiskMedium
	}

	outcome.Flags = sortedFlags(flags)
	return outcome
}

// SkippedOutcome : объект не классифицирован (например, слишком большой шифртекст)
func SkippedOutcome(flag string) model.ScanOutcome {
	return model.ScanOutcome{
		Verdict:   model.VerdictSkipped,
		RiskLevel: model.RiskLow,
		Flags:     []string{flag},
	}
}

func hasAnyPrefix(data []byte, prefixes [][]byte) bool {
	for _, prefix := range prefixes {
		if bytes.HasPrefix(data, prefix) {
			return true
		}
	}
	return false
}

func isArchive(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04")) ||
		bytes.HasPrefix(data, []byte("Rar!")) ||
		bytes.HasPrefix(data, []byte("7z\xbc\xaf\x27\x1c"))
}

// mimeMismatch : заявлен безобидный тип, а по содержимому это другой класс данных.
// Общие типы (octet-stream, пустой) не сравниваются
func mimeMismatch(declared, sniffed string) bool {
	declaredType, _, err := mime.ParseMediaType(declared)
	if err != nil || declaredType == "" || declaredType == "application/octet-stream" {
		return false
	}
	sniffedType, _, err := mime.ParseMediaType(sniffed)
	if err != nil || sniffedType == "application/octet-stream" {
		return false
	}
	if declaredType == sniffedType {
		return false
	}

	declaredMajor, _, _ := strings.Cut(declaredType, "/")
	sniffedMajor, _, _ := strings.Cut(sniffedType, "/")
	switch {
	case declaredMajor == "image" || declaredMajor == "video" || declaredMajor == "audio":
		return declaredMajor != sniffedMajor
	case declaredType == "application/pdf":
		return true
	case declaredMajor == "text":
		return sniffedMajor != "text"
	default:
		return false
	}
}

func sortedFlags(flags map[string]bool) []string {
	out := make([]string, 0, len(flags))
	for flag := range flags {
		out = append(out, flag)
	}
	sort.Strings(out)
	return out
}
