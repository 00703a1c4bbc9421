package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.0-flash"

// GeminiProvider implements LLMProvider using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client. An empty modelName
// selects DefaultModel.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	model := client.GenerativeModel(modelName)

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"

	// Extraction should be repeatable.
	model.SetTemperature(0.2)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// ParseUserIntent analyzes user input to extract ride intent.
func (p *GeminiProvider) ParseUserIntent(ctx context.Context, userMessage string, currentContext map[string]string) (*IntentResult, error) {
	fullPrompt := fmt.Sprintf("%s\n\nرسالة المستخدم: %s", buildSystemPrompt(currentContext), userMessage)

	var result IntentResult
	if err := p.generateJSON(ctx, fullPrompt, &result); err != nil {
		return nil, err
	}
	normalizeIntent(&result)
	return &result, nil
}

// MatchPlace asks the model which saved name the user meant.
func (p *GeminiProvider) MatchPlace(ctx context.Context, place string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}
	var result placeMatch
	if err := p.generateJSON(ctx, buildMatchPrompt(place, candidates), &result); err != nil {
		return "", err
	}
	return pickCandidate(result.Match, candidates), nil
}

func (p *GeminiProvider) generateJSON(ctx context.Context, prompt string, out any) error {
	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	cleanJSON := cleanJSONString(responseText.String())
	if err := json.Unmarshal([]byte(cleanJSON), out); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}
	return nil
}

// normalizeIntent maps unknown intents to chat and drops blank fields so
// callers can rely on nil meaning "not mentioned".
func normalizeIntent(r *IntentResult) {
	r.Intent = strings.ToLower(strings.TrimSpace(r.Intent))
	switch r.Intent {
	case IntentTrip, IntentChangeCar, IntentModifyLocation, IntentChat:
	default:
		r.Intent = IntentChat
	}
	r.StartLocation = blankToNil(r.StartLocation)
	r.Destination = blankToNil(r.Destination)
	r.CarClass = blankToNil(r.CarClass)

	r.EditTarget = strings.ToLower(strings.TrimSpace(r.EditTarget))
	if r.Intent == IntentModifyLocation && r.EditTarget == "" {
		switch {
		case r.StartLocation != nil && r.Destination != nil:
			r.EditTarget = EditBoth
		case r.StartLocation != nil:
			r.EditTarget = EditStart
		default:
			r.EditTarget = EditEnd
		}
	}
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}

// pickCandidate accepts the model's answer only if it names a candidate.
func pickCandidate(answer string, candidates []string) string {
	answer = strings.TrimSpace(answer)
	if answer == "" || answer == NoMatch {
		return ""
	}
	for _, c := range candidates {
		if c == answer {
			return c
		}
	}
	return ""
}

// buildSystemPrompt constructs the instructions for the AI.
func buildSystemPrompt(ctxMap map[string]string) string {
	lastStart := ctxMap["last_start"]
	lastEnd := ctxMap["last_end"]
	lastClass := ctxMap["last_car_class"]
	savedPlaces := ctxMap["saved_places"]

	if lastStart == "" {
		lastStart = "NONE"
	}
	if lastEnd == "" {
		lastEnd = "NONE"
	}
	if lastClass == "" {
		lastClass = "NONE"
	}
	if savedPlaces == "" {
		savedPlaces = "NONE"
	}

	return fmt.Sprintf(`الدور: أنت مساعد حجز رحلات لتطبيق "جيني" في الأردن. المستخدم يحكي باللهجة الأردنية.
السياق:
- بداية آخر رحلة: %s
- وجهة آخر رحلة: %s
- نوع السيارة في آخر رحلة: %s
- الأماكن المحفوظة: %s

القواعد:
1. إذا طلب المستخدم رحلة جديدة (فيها مكان انطلاق و/أو وجهة) -> "intent": "trip".
   - استخرج "start_location" و "destination" كما كتبها المستخدم بالضبط بدون ترجمة.
   - كلمات مثل "من"، "طالع من" تدل على البداية. "على"، "إلى"، "لـ"، "بدي أروح" تدل على الوجهة.
   - إذا ذكر مكان واحد فقط ولا يوجد رحلة سابقة، اترك الآخر null.
2. إذا طلب تغيير نوع السيارة فقط لرحلة سابقة (مثل "خليها VIP"، "بدي عائلية") -> "intent": "change_car".
3. إذا طلب تعديل البداية أو الوجهة لرحلة سابقة (مثل "لا، خليني أروح على العبدلي بدل") -> "intent": "modify_location".
   - "edit_target": "start" أو "end" أو "both".
   - ضع المكان الجديد في "start_location" و/أو "destination".
4. "car_class": إذا ذكر المستخدم نوع سيارة ضعه كما قاله (عادية، تاكسي، عائلية، VIP)، وإلا null.
5. غير ذلك (سلام، سؤال عام، كلام غير واضح) -> "intent": "chat" واكتب "reply" قصير ومهذب باللهجة الأردنية.
   إذا كان ناقص معلومة للرحلة، اسأل عنها في "reply".

صيغة الإخراج (JSON فقط):
{
  "intent": "trip" | "change_car" | "modify_location" | "chat",
  "start_location": "string or null",
  "destination": "string or null",
  "car_class": "string or null",
  "edit_target": "start" | "end" | "both" | null,
  "reply": "string"
}
`, lastStart, lastEnd, lastClass, savedPlaces)
}

func buildMatchPrompt(place string, candidates []string) string {
	var list strings.Builder
	for _, c := range candidates {
		list.WriteString("- ")
		list.WriteString(c)
		list.WriteString("\n")
	}
	return fmt.Sprintf(`المستخدم ذكر المكان: "%s"
هذه أسماء أماكن محفوظة:
%s
اختر الاسم الأنسب من القائمة بناءً على المعنى وليس التطابق الحرفي.
إذا لم يوجد تطابق واضح أرجع %s.
صيغة الإخراج (JSON فقط): {"match": "اسم من القائمة أو %s"}
`, place, list.String(), NoMatch, NoMatch)
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
