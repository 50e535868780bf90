package alert

// Code is a typed code enum for consistent alert identification.
type Code string

const (
	// ─── Setup ──────────────────────────────────────────────────────────
	ErrValidation     Code = "VALIDATION_ERROR"
	ErrPresetNotFound Code = "PRESET_NOT_FOUND"
	ErrPresetInvalid  Code = "PRESET_INVALID"

	// ─── Session flow ───────────────────────────────────────────────────
	ErrWrongPhase     Code = "WRONG_PHASE"
	ErrNoSuchQuestion Code = "NO_SUCH_QUESTION"

	// ─── Export ─────────────────────────────────────────────────────────
	ErrExportFailed  Code = "EXPORT_FAILED"
	ErrNothingToSave Code = "NOTHING_TO_SAVE"

	// ─── Notices ────────────────────────────────────────────────────────
	NoticeExported     Code = "EXPORTED"
	NoticeExamFinished Code = "EXAM_FINISHED"
	NoticeSessionReset Code = "SESSION_RESET"
	NoticeChecking     Code = "CHECKING_WINDOW"
)

// Alert is a one-line status message shown on screen until the next action.
type Alert struct {
	Code    Code              `json:"code"`
	Error   bool              `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Detail  string            `json:"detail,omitempty"`
}

// GetMessage returns a human-readable message for a given alert code.
func GetMessage(code Code) string {
	switch code {
	// ─── Setup ──────────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrPresetNotFound:
		return "Preset tidak ditemukan."
	case ErrPresetInvalid:
		return "File preset tidak valid."

	// ─── Session flow ───────────────────────────────────────────────────
	case ErrWrongPhase:
		return "Tindakan ini tidak dapat dilakukan pada tahap saat ini."
	case ErrNoSuchQuestion:
		return "Nomor soal tidak valid."

	// ─── Export ─────────────────────────────────────────────────────────
	case ErrExportFailed:
		return "Ekspor rekap waktu gagal."
	case ErrNothingToSave:
		return "Belum ada data untuk disimpan."

	// ─── Notices ────────────────────────────────────────────────────────
	case NoticeExported:
		return "Rekap waktu berhasil diekspor."
	case NoticeExamFinished:
		return "Waktu ujian telah berakhir."
	case NoticeSessionReset:
		return "Sesi telah direset."
	case NoticeChecking:
		return "Waktu pengecekan jawaban dimulai."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Helper builders
// ────────────────────────────────────────────────────────────────────────────

// Fail builds an error alert with no field-level details.
func Fail(code Code) *Alert {
	return &Alert{Code: code, Error: true, Message: GetMessage(code)}
}

// FailWithFields builds an error alert with field-level validation details.
func FailWithFields(code Code, fields map[string]string) *Alert {
	return &Alert{Code: code, Error: true, Message: GetMessage(code), Fields: fields}
}

// Notice builds an informational alert.
func Notice(code Code) *Alert {
	return &Alert{Code: code, Message: GetMessage(code)}
}

// NoticeWithDetail builds an informational alert with a free-form suffix,
// e.g. the path of an exported file.
func NoticeWithDetail(code Code, detail string) *Alert {
	return &Alert{Code: code, Message: GetMessage(code), Detail: detail}
}
