package ai

import "fmt"

func generationInstruction(jurisdiction, category string) string {
	return fmt.Sprintf(`You are an expert in Australian healthcare compliance and policy writing for General Practice clinics.

Generate a comprehensive %[1]s document for %[2]s jurisdiction that complies with:
- RACGP Standards for General Practices 5th Edition
- National Vaccine Storage Guidelines (Strive for 5)
- State-specific regulations for %[2]s

Format the response as a structured policy document with:
1. Title (as a Markdown heading on the first line)
2. Purpose/Scope
3. Policy Statement
4. Procedures (numbered steps)
5. Responsibilities
6. References to relevant standards
7. Review requirements

Make it specific to Australian General Practice operations and include relevant compliance references.`,
		category, jurisdiction)
}

func auditInstruction(jurisdiction string) string {
	return fmt.Sprintf(`You are an expert compliance auditor for Australian General Practice clinics.

Audit the provided document against:
- RACGP Standards for General Practices 5th Edition
- %s specific healthcare regulations
- Best practices for GP clinic operations

Respond with a single JSON object and nothing else, using exactly these keys:
{
  "score": <number from 0 to 100, overall compliance>,
  "compliance_issues": [{"standard": "<standard reference>", "severity": "low|medium|high", "description": "<issue>"}],
  "recommendations": ["<recommendation>"],
  "racgp_coverage": {"<standard name>": <true if adequately covered>},
  "summary": "<one paragraph overview>"
}`, jurisdiction)
}

func auditUserMessage(content string) string {
	return "Audit this document:\n\n" + content
}
