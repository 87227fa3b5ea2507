package gemini

import "strings"

// The prompts pin the exact answer grammar so parsing stays mechanical.
// Input blocks are pre-truncated by the caller

func descriptionPrompt(input string) string {
	return `You summarize government source code repositories for a public inventory.
Write one or two plain-language sentences describing what this repository does.
Do not mention file names, commit activity, or the README itself.
If the material below is not enough to tell what the project does, answer exactly: N/A

` + input
}

func exemptionPrompt(input string) string {
	return `You review government source code repositories for Federal Source Code Policy exemptions.
Decide whether this repository clearly qualifies for one of these exemption codes:
- exemptByLaw: sharing is restricted by law or regulation (HIPAA, PII, FISMA high)
- exemptByNationalSecurity: sharing would endanger national security
- exemptByAgencySystem: the code is inseparable from internal agency systems
- exemptByMissionSystem: the code is inseparable from a mission-critical system
- exemptByCIO: exploratory or disposable work exempted at CIO discretion

Answer with exactly one line in the form:
code|short justification

If none clearly applies, answer exactly: None

` + input
}

func exploratoryPrompt(input string) string {
	return `You review government source code repositories.
Decide whether this repository is primarily experimental, a demo, a tutorial,
a proof of concept, or other disposable exploratory work rather than an
operational product.

Answer with exactly one line in the form:
IS_EXPLORATORY|short reason
or
NOT_EXPLORATORY|short reason

` + input
}

func organizationPrompt(input string, known []string) string {
	return `You match government source code repositories to their owning organization.
Pick the single most likely owner from this list of organizations:
` + strings.Join(known, "\n") + `

Answer with the organization's full name exactly as written in the list.
If none is a clear match, answer exactly: None

` + input
}
