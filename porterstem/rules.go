// Package porterstem builds the classic Porter stemming algorithm as a
// sequence of contextual replacement rule batches, one bimachine per step
// group, exercising package rule and package bimachine end to end on a
// realistic multi-stage rewriting pipeline.
package porterstem

// Alphabet is every byte the stemmer's rules reference: the lowercase
// letters, plain whitespace, and two marker bytes (\x01, \x02) the rule
// groups use internally to carry state between steps within one word
// (\x01 marks a step-1b' candidate, \x02 marks the end of the word so
// rules can require "at the end" as a right context).
const Alphabet = "abcdefghijklmnopqrstuvwxyz \r\n\t\v\x01\x02"

const (
	letter          = "(a|b|c|d|e|f|g|h|i|j|k|l|m|n|o|p|q|r|s|t|u|v|w|x|y|z)"
	whitespace      = "( |\r|\n|\t|\v)"
	alwaysVowel     = "(a|e|i|o|u)"
	vowelOrY        = "(a|e|i|o|u|y)"
	alwaysConsonant = "(b|c|d|f|g|h|j|k|l|m|n|p|q|r|s|t|v|w|x|z)"
	consonantOrY    = "(b|c|d|f|g|h|j|k|l|m|n|p|q|r|s|t|v|w|x|y|z)"
	consonantNotWXY = "(b|c|d|f|g|h|j|k|l|m|n|p|q|r|s|t|v|z)"
)

var (
	containsVowel = "(" + letter + "*" + alwaysVowel + letter + "*|" + letter + "*" + consonantOrY + vowelOrY + letter + "*)"
	cClass        = "(" + consonantOrY + alwaysConsonant + "*)"
	vClass        = "(" + vowelOrY + alwaysVowel + "*)"
	// optC and optV are "zero or one run of consonants/vowels". This
	// dialect has no epsilon atom or '?' operator to spell (cClass|ε)
	// directly, and starring the run would also admit back-to-back runs
	// such as "by" that a single run excludes, so the empty branch is
	// spelled "@*" (the star of the empty set), giving exactly
	// {ε} ∪ L(cClass).
	optC = "(" + cClass + "|@*)"
	optV = "(" + vClass + "|@*)"
	vc   = "(" + vClass + cClass + ")"
	vStartNonY    = "(" + alwaysVowel + alwaysVowel + "*)"

	mGt0 = "((" + cClass + vc + "|" + vStartNonY + cClass + ")" + vc + "*" + optV + ")"
	mGt1 = "((" + cClass + vc + "|" + vStartNonY + cClass + ")" + vc + vc + "*" + optV + ")"

	// rctx requires the rewrite point to be immediately followed by the
	// end-of-word marker: every suffix rule fires only at the true end of
	// the word, never mid-word.
	rctx = "\x02"

	// noCtx is "no restriction" — package rule's sentinel for Σ*, not a
	// regex to compile (the teacher's original source spells the same
	// thing as a literal epsilon-matching pattern, "_"; this module's
	// regex dialect reserves '_' for empty transducer sides inside
	// [u,v] brackets instead, so the empty Go string is used directly).
	noCtx = ""
)

// steps is every rule group in application order. Group 1b' only fires
// within the word-internal marker state step 1b leaves behind, and is
// always run immediately after 1b for that reason.
var steps = [][]Source{
	step0, step1a, step1b, step1bPrime, step1c, step2, step3, step4, step5a, step5b,
}

// Source mirrors rule.Source; kept distinct here purely so this file reads
// as plain stemming data rather than already depending on package rule.
type Source struct {
	Name, Left, Right, Center string
}

var step0 = []Source{
	// Only words of more than two letters are stemmed at all; a marker
	// is appended so every later step's rctx can anchor "at the end".
	{"length-guard", letter + letter + letter, whitespace, "[_,\x02]"},
}

var step1a = []Source{
	{"sses-ss", noCtx, rctx, "[sses,ss]"},
	{"ies-i", noCtx, rctx, "[ies,i]"},
	{"ss-ss", noCtx, rctx, "[ss,ss]"},
	{"s-delete", noCtx, rctx, "[s,_]"},
}

var step1b = []Source{
	{"eed-ee", mGt0, rctx, "[eed,ee]"},
	{"eed-suppress", noCtx, rctx, "[eed,eed]"},
	{"ed-mark", containsVowel, rctx, "[ed,\x01]"},
	{"ing-mark", containsVowel, rctx, "[ing,\x01]"},
}

var step1bPrime = []Source{
	{"at-ate", noCtx, rctx, "[at\x01,ate]"},
	{"bl-ble", noCtx, rctx, "[bl\x01,ble]"},
	{"iz-ize", noCtx, rctx, "[iz\x01,ize]"},
	{
		"double-to-single",
		noCtx, rctx,
		"([bb,b]|[cc,c]|[dd,d]|[ff,f]|[gg,g]|[hh,h]|[jj,j]|[kk,k]|[mm,m]|[nn,n]" +
			"|[pp,p]|[qq,q]|[rr,r]|[tt,t]|[vv,v]|[ww,w]|[xx,x])[\x01,_]",
	},
	{"insert-e", whitespace + cClass + vowelOrY + consonantNotWXY, rctx, "[\x01,e]"},
	{"marker-drop", noCtx, rctx, "[\x01,_]"},
}

var step1c = []Source{
	{"y-to-i", containsVowel, rctx, "[y,i]"},
}

// step2 keeps a representative subset of the original's ~18 suffix pairs
// (the rest follow the exact same mGt0-guarded pattern with a different
// literal, omitted here to keep this package's rule count proportionate to
// the rest of the module rather than transcribing the full table).
var step2 = []Source{
	{"ational-ate", mGt0, rctx, "[ational,ate]"},
	{"ational-keep", noCtx, rctx, "[ational,ational]"},
	{"tional-tion", mGt0, rctx, "[tional,tion]"},
	{"tional-keep", noCtx, rctx, "[tional,tional]"},
	{"enci-ence", mGt0, rctx, "[enci,ence]"},
	{"enci-keep", noCtx, rctx, "[enci,enci]"},
	{"anci-ance", mGt0, rctx, "[anci,ance]"},
	{"anci-keep", noCtx, rctx, "[anci,anci]"},
	{"izer-ize", mGt0, rctx, "[izer,ize]"},
	{"izer-keep", noCtx, rctx, "[izer,izer]"},
	{"bli-ble", mGt0, rctx, "[bli,ble]"},
	{"bli-keep", noCtx, rctx, "[bli,bli]"},
	{"alli-al", mGt0, rctx, "[alli,al]"},
	{"alli-keep", noCtx, rctx, "[alli,alli]"},
	{"entli-ent", mGt0, rctx, "[entli,ent]"},
	{"entli-keep", noCtx, rctx, "[entli,entli]"},
	{"ization-ize", mGt0, rctx, "[ization,ize]"},
	{"ization-keep", noCtx, rctx, "[ization,ization]"},
	{"ation-ate", mGt0, rctx, "[ation,ate]"},
	{"ation-keep", noCtx, rctx, "[ation,ation]"},
	{"logi-log", mGt0, rctx, "[logi,log]"},
	{"logi-keep", noCtx, rctx, "[logi,logi]"},
}

var step3 = []Source{
	{"icate-ic", mGt0, rctx, "[icate,ic]"},
	{"ative-delete", mGt0, rctx, "[ative,_]"},
	{"alize-al", mGt0, rctx, "[alize,al]"},
	{"iciti-ic", mGt0, rctx, "[iciti,ic]"},
	{"ical-ic", mGt0, rctx, "[ical,ic]"},
	{"ful-delete", mGt0, rctx, "[ful,_]"},
	{"ness-delete", mGt0, rctx, "[ness,_]"},
}

// step4's "(m>1) ION -> (if *S or *T)" rule needs the stem to end in 's' or
// 't' before the suffix; expressed directly as its own context rather than
// folded into mGt1 since no other step4 rule shares it.
var ionCtx = "((" + cClass + vc + "|" + vStartNonY + cClass + ")" + vc + "*" + vClass + optC + "(s|t))"

var step4 = []Source{
	{"al-delete", mGt1, rctx, "[al,_]"},
	{"al-keep", noCtx, rctx, "[al,al]"},
	{"ance-delete", mGt1, rctx, "[ance,_]"},
	{"ance-keep", noCtx, rctx, "[ance,ance]"},
	{"ence-delete", mGt1, rctx, "[ence,_]"},
	{"ence-keep", noCtx, rctx, "[ence,ence]"},
	{"er-delete", mGt1, rctx, "[er,_]"},
	{"er-keep", noCtx, rctx, "[er,er]"},
	{"ic-delete", mGt1, rctx, "[ic,_]"},
	{"ic-keep", noCtx, rctx, "[ic,ic]"},
	{"able-delete", mGt1, rctx, "[able,_]"},
	{"able-keep", noCtx, rctx, "[able,able]"},
	{"ible-delete", mGt1, rctx, "[ible,_]"},
	{"ible-keep", noCtx, rctx, "[ible,ible]"},
	{"ment-delete", mGt1, rctx, "[ment,_]"},
	{"ment-keep", noCtx, rctx, "[ment,ment]"},
	{"ent-delete", mGt1, rctx, "[ent,_]"},
	{"ent-keep", noCtx, rctx, "[ent,ent]"},
	{"ion-delete", ionCtx, rctx, "[ion,_]"},
	{"ion-keep", noCtx, rctx, "[ion,ion]"},
	{"ou-delete", mGt1, rctx, "[ou,_]"},
	{"ou-keep", noCtx, rctx, "[ou,ou]"},
	{"ism-delete", mGt1, rctx, "[ism,_]"},
	{"ism-keep", noCtx, rctx, "[ism,ism]"},
	{"ate-delete", mGt1, rctx, "[ate,_]"},
	{"ate-keep", noCtx, rctx, "[ate,ate]"},
	{"iti-delete", mGt1, rctx, "[iti,_]"},
	{"iti-keep", noCtx, rctx, "[iti,iti]"},
	{"ous-delete", mGt1, rctx, "[ous,_]"},
	{"ous-keep", noCtx, rctx, "[ous,ous]"},
	{"ive-delete", mGt1, rctx, "[ive,_]"},
	{"ive-keep", noCtx, rctx, "[ive,ive]"},
	{"ize-delete", mGt1, rctx, "[ize,_]"},
	{"ize-keep", noCtx, rctx, "[ize,ize]"},
}

var step5a = []Source{
	{"e-delete-mgt1", mGt1, rctx, "[e,_]"},
	{
		"e-delete-meq1-not-o",
		whitespace + "((" +
			"(" + alwaysVowel + alwaysVowel + "*)" + cClass + optV + ")|(" +
			cClass + vc + vClass + ")|(" +
			cClass + vClass + alwaysVowel + cClass + optV + ")|(" +
			cClass + vClass + "(w|x|y)" + ")|(" +
			cClass + vClass + cClass + alwaysConsonant + optV +
			"))",
		rctx,
		"[e,_]",
	},
}

var step5b = []Source{
	{
		"double-l-to-single",
		"((" + cClass + vc + "|" + vStartNonY + cClass + ")" + vc + "*" + vClass + optC + "l)",
		whitespace,
		"[l\x02,_]",
	},
	{"marker-drop-end", noCtx, whitespace, "[\x02,_]"},
}
