package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"

	"churchhelper/entity"
	"churchhelper/internal/lib/sl"
)

// Verse is one stock verse with its source citation.
type Verse struct {
	Text      string
	Reference string
}

var verses = []Verse{
	{"For I know the plans I have for you, declares the Lord, plans to prosper you and not to harm you, to give you hope and a future.", "Jeremiah 29:11"},
	{"The Lord bless you and keep you; the Lord make his face shine on you and be gracious to you.", "Numbers 6:24-25"},
	{"This is the day the Lord has made; let us rejoice and be glad in it.", "Psalm 118:24"},
	{"Every good and perfect gift is from above, coming down from the Father of the heavenly lights.", "James 1:17"},
	{"Love is patient, love is kind. It does not envy, it does not boast, it is not proud.", "1 Corinthians 13:4"},
	{"Two are better than one, because they have a good return for their labor.", "Ecclesiastes 4:9"},
	{"Therefore what God has joined together, let no one separate.", "Mark 10:9"},
	{"And now these three remain: faith, hope and love. But the greatest of these is love.", "1 Corinthians 13:13"},
	{"Delight yourself in the Lord, and he will give you the desires of your heart.", "Psalm 37:4"},
	{"And we know that in all things God works for the good of those who love him.", "Romans 8:28"},
}

// Ordered cleanup rules for provider output: intro rules first, then closing
// rules, then whitespace collapse. Order is load-bearing and pinned by tests.
type cleanupRule struct {
	pattern *regexp.Regexp
	repl    string
}

var cleanupRules = []cleanupRule{
	{regexp.MustCompile(`(?i)Here is a warm, Christian anniversary wish for [^:]+:`), ""},
	{regexp.MustCompile(`(?i)Here's a warm, Christian anniversary wish for [^:]+:`), ""},
	{regexp.MustCompile(`(?i)Here is a Christian anniversary wish for [^:]+:`), ""},
	{regexp.MustCompile(`(?i)Here's a Christian anniversary wish for [^:]+:`), ""},
	{regexp.MustCompile(`(?i)Here is a personalized anniversary wish for [^:]+:`), ""},
	{regexp.MustCompile(`(?i)Here's a personalized anniversary wish for [^:]+:`), ""},
	{regexp.MustCompile(`(?i)May God bless you both\.`), ""},
	{regexp.MustCompile(`(?i)God bless\.`), ""},
	{regexp.MustCompile(`(?i)Blessings\.`), ""},
	{regexp.MustCompile(`(?i)Congratulations again\.`), ""},
	{regexp.MustCompile(`\n+`), " "},
	{regexp.MustCompile(`\s+`), " "},
}

// CleanGeneratedText strips known boilerplate intro/closing phrases from
// provider output and collapses whitespace. Idempotent on already-clean text.
func CleanGeneratedText(text string) string {
	for _, rule := range cleanupRules {
		text = rule.pattern.ReplaceAllString(text, rule.repl)
	}
	return strings.TrimSpace(text)
}

// Generator produces celebratory text: external providers first, then a
// deterministic templated fallback. Generation failures never escape to the
// caller.
type Generator struct {
	providers []Completer
	log       *slog.Logger
	intn      func(n int) int
}

// NewGenerator builds a generator over the given providers in priority
// order. Nil providers (absent credentials) are skipped.
func NewGenerator(log *slog.Logger, providers ...Completer) *Generator {
	g := &Generator{
		log:  log.With(sl.Module("generator")),
		intn: rand.Intn,
	}
	for _, p := range providers {
		if p != nil && !isNilCompleter(p) {
			g.providers = append(g.providers, p)
		}
	}
	return g
}

func isNilCompleter(p Completer) bool {
	c, ok := p.(*LLMClient)
	return ok && c == nil
}

// SetRand replaces the random source. For tests.
func (g *Generator) SetRand(intn func(n int) int) {
	g.intn = intn
}

// RandomVerse picks one stock verse with its citation.
func (g *Generator) RandomVerse() Verse {
	return verses[g.intn(len(verses))]
}

// GenerateWish produces a wish for the request, recording which path made it.
func (g *Generator) GenerateWish(ctx context.Context, req *entity.WishRequest) *entity.GeneratedWish {
	systemPrompt := "You are a Christian pastor writing personalized anniversary wishes. " +
		"Your messages should be warm, godly, and include appropriate Bible verses. " +
		"Return ONLY the wish content without any introductory or closing text."
	userPrompt := g.buildWishPrompt(req)

	for _, provider := range g.providers {
		text, err := provider.Complete(ctx, systemPrompt, userPrompt)
		if err != nil {
			g.log.With(sl.Err(err), slog.String("provider", provider.Name())).Warn("wish generation failed")
			continue
		}
		if cleaned := CleanGeneratedText(text); cleaned != "" {
			return &entity.GeneratedWish{Text: cleaned, Provider: provider.Name()}
		}
	}

	g.log.Warn("ai providers unavailable, using fallback wish generation")
	return &entity.GeneratedWish{Text: g.fallbackWish(req), Provider: entity.ProviderFallback}
}

func (g *Generator) buildWishPrompt(req *entity.WishRequest) string {
	parts := []string{
		fmt.Sprintf("Generate a Christian %s wish for %s.", occasionContext(req.Occasion), req.Name),
		fmt.Sprintf("Write this %s.", relationshipContext(req.Relationship)),
		fmt.Sprintf("Tone: %s", toneInstructions(req.Tone)),
	}
	if req.YearsTogether > 0 {
		parts = append(parts, fmt.Sprintf("They are celebrating %d years.", req.YearsTogether))
	}
	if req.Context != "" {
		parts = append(parts, fmt.Sprintf("Additional context: %s", req.Context))
	}
	parts = append(parts,
		"The wish should:",
		"- Be heartfelt and godly",
		"- Include a relevant Bible verse appropriate for the occasion",
		"- Be appropriate for a Christian celebration",
		"- Be 2-4 sentences long",
		"- Express God's blessings and love",
		"",
		"Format: [Wish Message] - [Bible Verse] ([Reference])",
	)
	return strings.Join(parts, "\n")
}

// fallbackWish does only string formatting and a random pick from a fixed
// non-empty list, so it cannot fail.
func (g *Generator) fallbackWish(req *entity.WishRequest) string {
	verse := g.RandomVerse()

	var message string
	switch req.Occasion {
	case entity.OccasionBirthday:
		message = fmt.Sprintf("🎂 Happy Birthday, %s! May God's love and grace shine upon you today and always.", req.Name)
	case entity.OccasionPromotion:
		message = fmt.Sprintf("🎉 Congratulations on your promotion, %s! May God continue to bless your career and use your talents for His glory.", req.Name)
	case entity.OccasionRetirement:
		message = fmt.Sprintf("🎊 Congratulations on your retirement, %s! May God bless this new chapter of your life with peace, joy, and new opportunities to serve Him.", req.Name)
	default:
		message = fmt.Sprintf("🎉 Happy %s, %s! May God's love and grace continue to strengthen your bond.", titleCase(occasionContext(req.Occasion)), req.Name)
	}

	if req.Context != "" {
		message += " " + req.Context
	}

	return fmt.Sprintf("%s - %s (%s)", message, verse.Text, verse.Reference)
}

// occasionContext is a total mapping from occasion to display phrase; unknown
// values fall through to the generic arm.
func occasionContext(occasion entity.Occasion) string {
	switch occasion {
	case entity.OccasionBirthday:
		return "birthday"
	case entity.OccasionWorkAnniversary:
		return "work anniversary"
	case entity.OccasionWeddingAnniversary:
		return "wedding anniversary"
	case entity.OccasionPromotion:
		return "promotion celebration"
	case entity.OccasionRetirement:
		return "retirement celebration"
	case entity.OccasionFriendship:
		return "friendship anniversary"
	case entity.OccasionRelationship:
		return "relationship anniversary"
	case entity.OccasionMilestone:
		return "milestone anniversary"
	case entity.OccasionCustom:
		return "special anniversary"
	default:
		return "anniversary"
	}
}

// relationshipContexts is ordered: partial matching takes the first hit, so
// an input matching several keys always resolves the same way.
var relationshipContexts = []struct {
	key string
	ctx string
}{
	{"spouse", "as their loving spouse"},
	{"husband", "as their loving husband"},
	{"wife", "as their loving wife"},
	{"partner", "as their loving partner"},
	{"parent", "as their parent"},
	{"mother", "as their mother"},
	{"father", "as their father"},
	{"child", "as their child"},
	{"son", "as their son"},
	{"daughter", "as their daughter"},
	{"sibling", "as their sibling"},
	{"brother", "as their brother"},
	{"sister", "as their sister"},
	{"friend", "as their dear friend"},
	{"colleague", "as their colleague"},
	{"coworker", "as their coworker"},
	{"relative", "as their family member"},
	{"family", "as their family member"},
	{"mentor", "as their mentor"},
	{"teacher", "as their teacher"},
	{"boss", "as their boss"},
	{"manager", "as their manager"},
	{"neighbor", "as their neighbor"},
	{"pastor", "as their pastor"},
	{"minister", "as their minister"},
}

func relationshipContext(relationship string) string {
	lower := strings.ToLower(strings.TrimSpace(relationship))

	for _, rc := range relationshipContexts {
		if rc.key == lower {
			return rc.ctx
		}
	}

	// Partial matches catch variants like "best friend" or "step-mother".
	for _, rc := range relationshipContexts {
		if strings.Contains(lower, rc.key) || strings.Contains(rc.key, lower) {
			return rc.ctx
		}
	}

	return fmt.Sprintf("as their %s", relationship)
}

func toneInstructions(tone entity.Tone) string {
	switch tone {
	case entity.ToneProfessional:
		return "Use a professional, respectful tone appropriate for workplace relationships. Keep it formal but warm."
	case entity.ToneFriendly:
		return "Use a friendly, approachable tone. Be warm and personable while maintaining respect."
	case entity.ToneHumorous:
		return "Use a light, humorous tone with appropriate jokes or playful language. Keep it tasteful and respectful."
	case entity.ToneFormal:
		return "Use a formal, dignified tone. Be respectful and proper while still being celebratory."
	default:
		return "Use a warm, heartfelt tone. Express genuine care and affection in your message."
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
