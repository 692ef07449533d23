package locale

var messages = map[string]map[string]string{
	"en": {
		"entry.invalid":   "Please enter your email and choose a prize.",
		"entry.failed":    "We could not save your entry, please try again.",
		"entry.success":   "You're in! Good luck.",
		"verify.found":    "Your participation is confirmed.",
		"verify.notfound": "We could not find an entry for this email and prize.",
		"verify.error":    "Verification is unavailable right now, please try again.",
	},
	"ar": {
		"entry.invalid":   "يرجى إدخال بريدك الإلكتروني واختيار جائزة.",
		"entry.failed":    "تعذر حفظ مشاركتك، يرجى المحاولة مرة أخرى.",
		"entry.success":   "تم تسجيل مشاركتك! حظاً موفقاً.",
		"verify.found":    "تم تأكيد مشاركتك.",
		"verify.notfound": "لم نعثر على مشاركة لهذا البريد وهذه الجائزة.",
		"verify.error":    "التحقق غير متاح حالياً، يرجى المحاولة مرة أخرى.",
	},
	"fr": {
		"entry.invalid":   "Veuillez saisir votre e-mail et choisir un lot.",
		"entry.failed":    "Votre participation n'a pas pu être enregistrée, réessayez.",
		"entry.success":   "C'est fait ! Bonne chance.",
		"verify.found":    "Votre participation est confirmée.",
		"verify.notfound": "Aucune participation trouvée pour cet e-mail et ce lot.",
		"verify.error":    "La vérification est indisponible, réessayez plus tard.",
	},
}

// T looks up key in the preference's language, falling back to English and
// then to the key itself.
func (p Preference) T(key string) string {
	if msg, ok := messages[p.Language][key]; ok {
		return msg
	}
	if msg, ok := messages["en"][key]; ok {
		return msg
	}
	return key
}
