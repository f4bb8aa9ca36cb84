package agent

import (
	"fmt"
	"strings"
)

// SafeText renders err as valid UTF-8 so odd bytes in remote error payloads
// cannot corrupt the page.
func SafeText(err error) string {
	if err == nil {
		return ""
	}
	return strings.ToValidUTF8(err.Error(), "\uFFFD")
}

// FormatCompletionError is shown to the user and stored as the assistant turn
// when the chat completion fails.
func FormatCompletionError(err error) string {
	return "**Lo siento, ocurrió un error al contactar la API.**\n\n" +
		"Por favor, revisa que tu clave de API en el archivo `.env` sea correcta y que tengas conexión a internet.\n\n" +
		fmt.Sprintf("**Detalle técnico:** `%s`", SafeText(err))
}

func transcribedNotice(text string) Notice {
	return Notice{Level: LevelInfo, Text: `Texto transcrito: "` + text + `"`}
}

func transcriptionErrorNotice(err error) Notice {
	return Notice{Level: LevelError, Text: "Error durante la transcripción: " + SafeText(err)}
}

func synthesisWarning(err error) Notice {
	return Notice{Level: LevelWarning, Text: "No se pudo generar el audio: " + SafeText(err)}
}
