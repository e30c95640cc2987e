package judge

// Built-in rubric templates. The general set applies to any prompt; the
// oneonone set grades coaching hints for 1on1 meeting preparation. Each
// rubric asks for a five item checklist scored 0 or 1 and a JSON reply.
var builtinRubrics = map[string]map[string]string{
	GeneralDomain: {
		"instruction_following": rubricInstructionFollowing,
		"factual_accuracy":      rubricFactualAccuracy,
		"output_quality":        rubricOutputQuality,
	},
	"oneonone": {
		"purpose_alignment":        rubricPurposeAlignment,
		"coaching_quality":         rubricCoachingQuality,
		"tone_appropriateness":     rubricToneAppropriateness,
		"sensitive_topic_handling": rubricSensitiveTopics,
	},
}

const rubricInstructionFollowing = `You are evaluating if the AI followed the prompt instructions.

## Original Prompt (Instructions):
{{.Prompt}}

## Input Data:
{{.Input}}

## AI's Output:
{{.Output}}

## Checklist - Score each item (0 or 1):

1. **Output Format**: Did the AI use the requested format? (JSON, specific fields, structure)
2. **Required Fields**: Are all required fields present in the output?
3. **Constraints**: Did the AI follow specified constraints? (length, tone, language, etc.)
4. **Task Completion**: Did the AI complete the requested task?
5. **No Extra Content**: Did the AI avoid adding unrequested content?

## Response Format (JSON):
{
    "checklist": {
        "output_format": 0 or 1,
        "required_fields": 0 or 1,
        "constraints": 0 or 1,
        "task_completion": 0 or 1,
        "no_extra_content": 0 or 1
    },
    "score": <float 0-1, average of checklist>,
    "issues": ["list of specific issues found, if any"]
}`

const rubricFactualAccuracy = `You are evaluating factual accuracy and hallucination.

## Input Data (Ground Truth):
{{.Input}}

## AI's Output:
{{.Output}}

## Checklist - Score each item (0 or 1):

1. **No Fabrication**: Did the AI avoid making up information not in the input?
2. **No Distortion**: Did the AI avoid distorting/misrepresenting input data?
3. **Accurate Extraction**: Are extracted facts accurate to the source?
4. **Reasonable Inference**: Are any inferences logically sound?
5. **No Hallucinated Details**: Are there no hallucinated names, numbers, or specifics?

## Response Format (JSON):
{
    "checklist": {
        "no_fabrication": 0 or 1,
        "no_distortion": 0 or 1,
        "accurate_extraction": 0 or 1,
        "reasonable_inference": 0 or 1,
        "no_hallucinated_details": 0 or 1
    },
    "score": <float 0-1, average of checklist>,
    "issues": ["list of specific hallucinations found, if any"]
}`

const rubricOutputQuality = `You are evaluating overall output quality.

## Task Context:
{{.Prompt}}

## Input:
{{.Input}}

## AI's Output:
{{.Output}}

## Checklist - Score each item (0 or 1):

1. **Clarity**: Is the output clear and easy to understand?
2. **Completeness**: Does it address all aspects of the task?
3. **Usefulness**: Would this output be useful for the intended purpose?
4. **Consistency**: Is the output internally consistent?
5. **Professionalism**: Is the tone/style appropriate?

## Response Format (JSON):
{
    "checklist": {
        "clarity": 0 or 1,
        "completeness": 0 or 1,
        "usefulness": 0 or 1,
        "consistency": 0 or 1,
        "professionalism": 0 or 1
    },
    "score": <float 0-1, average of checklist>,
    "feedback": "brief constructive feedback"
}`

const rubricPurposeAlignment = `You are an expert evaluator for 1on1 meeting coaching quality.

## Evaluation Criteria
1on1 meetings are NOT work status report meetings. Leaders already know basic work status.

The PURPOSE of 1on1 is:
- **Member support**: Understand member's challenges, blockers, and needs
- **Relationship building**: Show genuine care about the member's well-being
- **Growth facilitation**: Help member reflect and grow
- **Trust building**: Create safe space for open communication

## Input:
{{.Input}}

## AI's Output (coaching hints):
{{.Output}}

## Checklist - Score each item (0 or 1):

1. **Focus on Member**: Does the hint focus on member's feelings, struggles, or well-being?
2. **Support Oriented**: Does it suggest how leader can support/help (not request information)?
3. **Avoids Status Questions**: Does it avoid asking about basic work status/progress?
4. **Explores Growth**: Does it touch on growth, learning, or career aspects?
5. **Relationship Building**: Does it help build trust and open communication?

## Response Format (JSON):
{
    "checklist": {
        "focus_on_member": 0 or 1,
        "support_oriented": 0 or 1,
        "avoids_status_questions": 0 or 1,
        "explores_growth": 0 or 1,
        "relationship_building": 0 or 1
    },
    "score": <float 0-1, average of checklist>,
    "issues": ["list of hints that feel like status reports"]
}`

const rubricCoachingQuality = `You are evaluating coaching hint quality for 1on1 meetings.

## Context:
A coaching hint helps leaders prepare better questions for 1on1 meetings.

## Input (member's response data):
{{.Input}}

## AI's Coaching Hints:
{{.Output}}

## Checklist - Score each item (0 or 1):

1. **Actionable**: Can the leader act on this hint immediately?
2. **Specific**: Is it specific to this member's situation (not generic)?
3. **Empathetic**: Does it show understanding of member's perspective?
4. **Safe**: Does it respect boundaries and sensitive topics?
5. **Contextual**: Does it connect to what the member actually said/expressed?

## Response Format (JSON):
{
    "checklist": {
        "actionable": 0 or 1,
        "specific": 0 or 1,
        "empathetic": 0 or 1,
        "safe": 0 or 1,
        "contextual": 0 or 1
    },
    "score": <float 0-1, average of checklist>,
    "feedback": "brief constructive feedback on how to improve"
}`

const rubricToneAppropriateness = `You are evaluating the tone and language appropriateness of coaching hints.

## Task Context:
Coaching hints for leaders in 1on1 meeting preparation.

## AI's Output:
{{.Output}}

## Checklist - Score each item (0 or 1):

1. **Professional**: Is the language professional but warm?
2. **Non-judgmental**: Does it avoid judging the member's responses?
3. **Constructive**: Is the framing positive and constructive?
4. **Appropriate Length**: Is each hint concise (1-2 sentences)?
5. **Language Match**: Is it in the requested language (Korean/English)?

## Response Format (JSON):
{
    "checklist": {
        "professional": 0 or 1,
        "non_judgmental": 0 or 1,
        "constructive": 0 or 1,
        "appropriate_length": 0 or 1,
        "language_match": 0 or 1
    },
    "score": <float 0-1, average of checklist>,
    "issues": ["list of tone/style issues, if any"]
}`

const rubricSensitiveTopics = `You are evaluating how well the AI handles sensitive topics.

## Sensitive Topics in 1on1:
- Burnout signals
- Team conflicts
- Career concerns
- Personal struggles
- Avoided responses (member deflecting questions)

## Input:
{{.Input}}

## AI's Coaching Hints:
{{.Output}}

## Checklist - Score each item (0 or 1):

1. **Recognizes Signals**: Does it identify sensitive signals in member's response?
2. **Respects Boundaries**: Does it suggest respecting member's boundaries?
3. **Safe Approach**: Does it recommend gentle, non-intrusive follow-up?
4. **Alternative Topics**: Does it suggest alternative safer topics when needed?
5. **No Pressure**: Does it avoid pushing members to share more than comfortable?

## Response Format (JSON):
{
    "checklist": {
        "recognizes_signals": 0 or 1,
        "respects_boundaries": 0 or 1,
        "safe_approach": 0 or 1,
        "alternative_topics": 0 or 1,
        "no_pressure": 0 or 1
    },
    "score": <float 0-1, average of checklist>,
    "issues": ["list of sensitive topics handled poorly, if any"]
}`
