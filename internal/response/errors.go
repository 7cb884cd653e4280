package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrPatientAccessOnly  ErrCode = "PATIENT_ACCESS_ONLY"
	ErrPsychAccessOnly    ErrCode = "PSYCHOLOGIST_ACCESS_ONLY"
	ErrNotAssignedPatient ErrCode = "NOT_ASSIGNED_PATIENT"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Assessment engine ─────────────────────────────────────────────
	ErrInvalidOption          ErrCode = "INVALID_OPTION"
	ErrInvalidAnswerShape     ErrCode = "INVALID_ANSWER_SHAPE"
	ErrInvalidStateTransition ErrCode = "INVALID_STATE_TRANSITION"
	ErrInvalidScore           ErrCode = "INVALID_SCORE"
	ErrConfigurationMissing   ErrCode = "CONFIGURATION_MISSING"
	ErrTemplateNotPublished   ErrCode = "TEMPLATE_NOT_PUBLISHED"
	ErrTemplateNotDraft       ErrCode = "TEMPLATE_NOT_DRAFT"
	ErrNoQuestions            ErrCode = "NO_QUESTIONS"
	ErrNotTemplateAuthor      ErrCode = "NOT_TEMPLATE_AUTHOR"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Correo/documento o contraseña incorrectos."
	case ErrSessionActive:
		return "Ya existe una sesión activa en otro dispositivo."
	case ErrSessionInvalidated:
		return "Su sesión ha finalizado. Inicie sesión nuevamente."
	case ErrTokenRequired:
		return "Se requiere un token de autenticación."
	case ErrTokenInvalid:
		return "El token de autenticación no es válido."
	case ErrTokenExpired:
		return "El token de autenticación ha expirado."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "No tiene permiso para acceder a este recurso."
	case ErrPatientAccessOnly:
		return "Este recurso está restringido a pacientes."
	case ErrPsychAccessOnly:
		return "Este recurso está restringido a psicólogos."
	case ErrNotAssignedPatient:
		return "El paciente no está asignado a este psicólogo."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "La validación falló. Revise los datos ingresados."
	case ErrInvalidID:
		return "El formato del ID no es válido."
	case ErrInvalidPayload:
		return "El cuerpo de la solicitud no es válido."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Recurso no encontrado."
	case ErrConflict:
		return "El recurso ya existe."
	case ErrDependencyExists:
		return "No se puede eliminar porque otros datos dependen de este registro."

	// ─── Assessment engine ─────────────────────────────────────────────
	case ErrInvalidOption:
		return "La respuesta referencia una opción que no pertenece a la pregunta."
	case ErrInvalidAnswerShape:
		return "El valor de la respuesta no corresponde al tipo de pregunta."
	case ErrInvalidStateTransition:
		return "La operación no está permitida en el estado actual del test."
	case ErrInvalidScore:
		return "El modo de ponderación requiere un puntaje final."
	case ErrConfigurationMissing:
		return "No hay tabla de interpretación configurada para este dominio."
	case ErrTemplateNotPublished:
		return "La plantilla no está publicada."
	case ErrTemplateNotDraft:
		return "La plantilla no está en estado BORRADOR."
	case ErrNoQuestions:
		return "La plantilla no tiene preguntas."
	case ErrNotTemplateAuthor:
		return "Usted no es el autor de esta plantilla."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Demasiadas solicitudes. Intente nuevamente más tarde."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Ocurrió un error interno del servidor."
	default:
		return "Ocurrió un error inesperado."
	}
}
