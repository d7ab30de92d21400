package analyzer

// receiptPrompt is the fixed extraction instruction sent with every
// receipt image. It names the exact output fields and states the risk
// scoring policy in natural language.
const receiptPrompt = "Analyze this receipt image and extract the following details into a JSON object:\n" +
	"- \"vendor\": string, the name of the merchant.\n" +
	"- \"date\": string, the date of the transaction in YYYY-MM-DD format. If not found, use today's date.\n" +
	"- \"amount\": number, the total amount of the transaction.\n" +
	"- \"category\": string, the expense category (e.g. Meals, Travel, Office Supplies, Entertainment, Software, Groceries).\n" +
	"- \"risk_score\": number from 0 to 100 indicating the risk level of this expense (0 is safe, 100 is high risk).\n" +
	"    - High risk (80+): alcohol, casinos, personal items, unusually high amounts for the category.\n" +
	"    - Medium risk (50-79): weekend transactions, missing details.\n" +
	"    - Low risk (0-49): standard business expenses.\n" +
	"- \"risk_reason\": string, a brief explanation for the assigned risk score.\n\n" +
	"Return ONLY the raw JSON object.\n" +
	"Do NOT wrap the response in code fences.\n" +
	"Do NOT use ```json or any Markdown.\n" +
	"Output must begin with \"{\" and end with \"}\".\n"
