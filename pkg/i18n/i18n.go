package i18n

import "strings"

// The API speaks French on the wire. Handlers and services use English keys
// so the code stays greppable; translation happens at the response edge.
var translations = map[string]string{
	"invalid payload":             "Données de validation invalides",
	"invalid id":                  "L'ID doit être un entier positif",
	"user created":                "Utilisateur créé avec succès",
	"login successful":            "Connexion réussie",
	"invalid email or password":   "Email ou mot de passe incorrect",
	"email already registered":    "Cet email est déjà utilisé",
	"profile fetched":             "Profil récupéré avec succès",
	"profile updated":             "Profil mis à jour avec succès",
	"password changed":            "Mot de passe changé avec succès",
	"old password incorrect":      "Ancien mot de passe incorrect",
	"token valid":                 "Token valide",
	"missing authorization token": "Token d'accès requis",
	"invalid token":               "Token invalide",
	"token expired":               "Token expiré",
	"user not found":              "Utilisateur non trouvé",
	"forbidden resource":          "Accès non autorisé à cette ressource",
	"resource not found":          "Ressource non trouvée",

	"message sent":                "Message envoyé avec succès",
	"draft saved":                 "Brouillon enregistré avec succès",
	"message updated":             "Message mis à jour avec succès",
	"message trashed":             "Message mis en corbeille avec succès",
	"message deleted permanently": "Message supprimé définitivement avec succès",
	"draft sent":                  "Brouillon envoyé avec succès",
	"message not found":           "Message non trouvé",
	"not a draft":                 "Ce message n'est pas un brouillon",
	"recipients required":         "Au moins un destinataire est requis",
	"invalid status":              "Statut invalide",

	"reception not found":           "Message non trouvé",
	"message marked as read":        "Message marqué comme lu",
	"state updated":                 "État mis à jour avec succès",
	"invalid state":                 "État invalide",
	"message moved":                 "Message déplacé avec succès",
	"reception trashed":             "Message supprimé avec succès",
	"reception deleted permanently": "Message supprimé définitivement",
	"folder not owned":              "Accès non autorisé à ce dossier",

	"folder created":         "Dossier créé avec succès",
	"folder updated":         "Dossier mis à jour avec succès",
	"folder deleted":         "Dossier supprimé avec succès",
	"folder not found":       "Dossier non trouvé",
	"folder already exists":  "Ce dossier existe déjà",
	"reception ids required": "Liste de messages requise",

	"contact added":          "Contact ajouté avec succès",
	"contact deleted":        "Contact supprimé avec succès",
	"contact not found":      "Contact non trouvé",
	"contact already exists": "Ce contact existe déjà dans votre liste",
	"cannot add yourself":    "Vous ne pouvez pas vous ajouter vous-même comme contact",
	"search term required":   "Terme de recherche requis",

	"file is required": "Fichier requis",
	"file too large":   "Fichier trop volumineux",
	"attachment saved": "Pièce jointe enregistrée avec succès",

	"already exists":        "Cette ressource existe déjà",
	"invalid reference":     "Référence invalide",
	"service unavailable":   "Service temporairement indisponible",
	"internal server error": "Erreur interne du serveur",
	"not found":             "Route non trouvée",
	"rate limiter error":    "Erreur de limitation des requêtes",
	"rate limit exceeded":   "Trop de requêtes, réessayez plus tard",
}

// Prefix entries translate messages that carry a dynamic suffix, for example
// "recipient not found: 7". The suffix is kept.
var prefixTranslations = map[string]string{
	"recipient not found:":     "Destinataire introuvable :",
	"messages marked as read:": "Messages marqués comme lus :",
	"messages moved:":          "Messages déplacés :",
}

func Translate(message string) string {
	if translated, ok := translations[message]; ok {
		return translated
	}
	for prefix, translated := range prefixTranslations {
		if strings.HasPrefix(message, prefix) {
			return translated + strings.TrimPrefix(message, prefix)
		}
	}
	return message
}
