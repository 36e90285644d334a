package imap

import "strings"

// specialUseFlags is the set of RFC 6154 SPECIAL-USE mailbox flags
// CheckSpecialUse tests a node's advertised flags against, in the
// priority order the first match wins.
var specialUseFlags = []MailboxAttr{
	MailboxAttrAll,
	MailboxAttrArchive,
	MailboxAttrDrafts,
	MailboxAttrFlagged,
	MailboxAttrJunk,
	MailboxAttrSent,
	MailboxAttrTrash,
}

// specialUseNames is a heuristic, multilingual fallback dictionary
// mapping a lowercased, trimmed mailbox display name to the special-use
// flag it conventionally denotes, for servers that do not advertise
// SPECIAL-USE. Reconstructed from general knowledge of well-known
// webmail folder-naming conventions (English, and the handful of
// non-English forms most commonly seen in the wild); it is not
// exhaustive.
var specialUseNames = map[string]MailboxAttr{
	// Sent
	"sent":            MailboxAttrSent,
	"sent items":      MailboxAttrSent,
	"sent messages":   MailboxAttrSent,
	"sentmail":        MailboxAttrSent,
	"envoyes":         MailboxAttrSent,
	"éléments envoyés": MailboxAttrSent,
	"gesendet":        MailboxAttrSent,
	"gesendete objekte": MailboxAttrSent,
	"enviados":       MailboxAttrSent,
	"elementos enviados": MailboxAttrSent,
	"inviati":        MailboxAttrSent,
	"posta inviata":  MailboxAttrSent,
	"verzonden":      MailboxAttrSent,
	"verzonden items": MailboxAttrSent,
	"enviadas":       MailboxAttrSent,
	"отправленные":   MailboxAttrSent,
	"wyslane":        MailboxAttrSent,
	"wysłane":        MailboxAttrSent,
	"odeslane":       MailboxAttrSent,
	"odeslané":       MailboxAttrSent,
	"küldött elemek": MailboxAttrSent,
	"gönderilenler":  MailboxAttrSent,
	"skickat":        MailboxAttrSent,
	"sendt":          MailboxAttrSent,
	"lähetetyt":      MailboxAttrSent,
	"已发送":            MailboxAttrSent,
	"寄件備份":           MailboxAttrSent,
	"送信済み":           MailboxAttrSent,
	"보낸 편지함":         MailboxAttrSent,
	"bidalita":       MailboxAttrSent,

	// Trash
	"trash":          MailboxAttrTrash,
	"deleted":        MailboxAttrTrash,
	"deleted items":  MailboxAttrTrash,
	"deleted messages": MailboxAttrTrash,
	"corbeille":      MailboxAttrTrash,
	"papierkorb":     MailboxAttrTrash,
	"gelöschte objekte": MailboxAttrTrash,
	"papelera":       MailboxAttrTrash,
	"elementos eliminados": MailboxAttrTrash,
	"cestino":        MailboxAttrTrash,
	"prullenbak":     MailboxAttrTrash,
	"lixeira":        MailboxAttrTrash,
	"корзина":        MailboxAttrTrash,
	"kosz":           MailboxAttrTrash,
	"koš":            MailboxAttrTrash,
	"törölt elemek":  MailboxAttrTrash,
	"çöp":            MailboxAttrTrash,
	"papperskorg":    MailboxAttrTrash,
	"papirkurv":      MailboxAttrTrash,
	"roskakori":      MailboxAttrTrash,
	"prügikast":      MailboxAttrTrash,
	"垃圾桶":            MailboxAttrTrash,
	"已删除邮件":          MailboxAttrTrash,
	"ゴミ箱":            MailboxAttrTrash,
	"휴지통":            MailboxAttrTrash,

	// Junk / spam
	"junk":           MailboxAttrJunk,
	"spam":           MailboxAttrJunk,
	"junk e-mail":    MailboxAttrJunk,
	"bulk mail":      MailboxAttrJunk,
	"pourriel":       MailboxAttrJunk,
	"courrier indésirable": MailboxAttrJunk,
	"unerwünscht":    MailboxAttrJunk,
	"correo no deseado": MailboxAttrJunk,
	"posta indesiderata": MailboxAttrJunk,
	"ongewenste e-mail": MailboxAttrJunk,
	"lixo eletrônico": MailboxAttrJunk,
	"спам":           MailboxAttrJunk,
	"niechciane":     MailboxAttrJunk,
	"nevyžádaná pošta": MailboxAttrJunk,
	"levélszemét":    MailboxAttrJunk,
	"gereksiz":       MailboxAttrJunk,
	"skräppost":      MailboxAttrJunk,
	"søppelpost":     MailboxAttrJunk,
	"roskaposti":     MailboxAttrJunk,
	"ogurk":          MailboxAttrJunk,
	"垃圾邮件":           MailboxAttrJunk,
	"迷惑メール":          MailboxAttrJunk,
	"스팸":             MailboxAttrJunk,

	// Drafts
	"drafts":         MailboxAttrDrafts,
	"draft":          MailboxAttrDrafts,
	"brouillons":     MailboxAttrDrafts,
	"entwürfe":       MailboxAttrDrafts,
	"borradores":     MailboxAttrDrafts,
	"bozze":          MailboxAttrDrafts,
	"concepten":      MailboxAttrDrafts,
	"rascunhos":      MailboxAttrDrafts,
	"черновики":      MailboxAttrDrafts,
	"wersje robocze": MailboxAttrDrafts,
	"koncepty":       MailboxAttrDrafts,
	"piszkozatok":    MailboxAttrDrafts,
	"taslaklar":      MailboxAttrDrafts,
	"utkast":         MailboxAttrDrafts,
	"kladder":        MailboxAttrDrafts,
	"luonnokset":     MailboxAttrDrafts,
	"mustandid":      MailboxAttrDrafts,
	"草稿":             MailboxAttrDrafts,
	"下書き":            MailboxAttrDrafts,
	"임시보관함":          MailboxAttrDrafts,
}

// CheckSpecialUse assigns node's SpecialUse role in place: if caps
// advertises SPECIAL-USE, the node's server-reported flags are tested
// against the seven RFC 6154 roles; otherwise a lowercased, trimmed
// name lookup against a multilingual dictionary of Sent/Trash/Junk/
// Drafts names is applied.
func CheckSpecialUse(node *MailboxNode, caps CapSet) {
	if caps.Has(CapSpecialUse) {
		for _, want := range specialUseFlags {
			for _, have := range node.Flags {
				if have == want {
					node.SpecialUse = want
					return
				}
			}
		}
		return
	}

	key := strings.ToLower(strings.TrimSpace(node.Name))
	if use, ok := specialUseNames[key]; ok {
		node.Flags = append(node.Flags, use)
		node.SpecialUse = use
	}
}
