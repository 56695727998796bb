package engine

// Instructions sent to the generator as a trailing system turn.
const (
	personaPrompt = "You are an AI medical coding assistant that helps healthcare providers accurately code diagnoses with ICD-10 codes, procedures with CPT-4 codes, and generate insurance claim forms."

	patientInfoPrompt = `Extract patient information from the user's message.
Look for:
- Full name
- Date of birth
- Gender
- Address (optional)
- Phone number (optional)
- Insurance provider
- Insurance ID
- Group number (optional)

Format your response as JSON with keys: name, dob, gender, address, phone, insurance, policy, group.
For any missing information, use null or empty string.`

	diagnosesPrompt = `Extract potential medical diagnoses from the clinical notes.
Focus on conditions, diseases, symptoms, or health issues mentioned.
Format your response as a list of diagnoses, one per line.`

	proceduresPrompt = `Extract potential medical procedures from the clinical notes.
Focus on treatments, surgeries, tests, or other medical services performed.
Format your response as a list of procedures, one per line.`

	additionalInfoPrompt = `The user is providing additional information for the medical claim. Extract any relevant information such as:
- Service date
- Place of service
- Referring provider
- NPI number
- Additional insurance info
- Other relevant claim details

Format your response as JSON with relevant keys and values.`

	documentPrompt = `Extract patient information and medical details from the provided text. Look for:
1. Patient Information:
   - Full name
   - Date of birth
   - Gender
   - Insurance provider
   - Insurance ID/policy number
   - Group number (optional)
2. Clinical Information:
   - Diagnoses
   - Procedures
   - Service dates
   - Place of service
   - Provider information

Format your response as JSON with two main sections: patient_info and clinical_info.
List diagnoses and procedures as arrays of short phrases.`

	learningPrompt = `You are a patient medical coding tutor. Answer the user's question about medical coding
(ICD-10, CPT-4, CMS-1500 claim forms, modifiers, documentation requirements) clearly and concisely.
Use short examples where they help.`
)

// Fixed assistant messages.
const (
	greetingMessage = "Hello! I'm your AI medical coding assistant. I can help you code patient diagnoses and procedures, then generate insurance claims. Would you like to:\n1. Start with guided mode (I'll help you step by step)\n2. Use summary mode (provide all information at once)\n3. Upload a PDF/JPG document (I'll extract information from your document)"

	guidedMessage  = "First, I need the essential patient information:\n- Full name\n- Date of birth\n- Gender\n- Insurance provider\n- Insurance ID/policy number\n\nPlease provide as many of these details as you have available."
	summaryMessage = "Please provide all the information at once, including:\n1. Patient Information (name, DOB, gender, insurance details)\n2. Clinical Notes (diagnoses and procedures)\n3. Any additional information (service dates, place of service, etc.)"
	uploadMessage  = "Please provide the path to your PDF or JPG document. I'll extract the information and ask for any missing essential details."
	invalidMode    = "Please choose either option 1 (guided mode), 2 (summary mode), or 3 (upload document)."

	missingPatientInfo = "I still need the following essential information: %s. Please provide these details."
	patientInfoDone    = "Thank you for providing the patient information. Now, please share the clinical notes or medical documentation. I'll extract diagnosis (ICD-10) and procedure (CPT-4) codes from them."

	listingHeader       = "Based on the clinical notes, I've identified the following:\n\n"
	noDiagnoses         = "I couldn't identify any clear diagnoses for ICD-10 coding.\n"
	noProcedures        = "I couldn't identify any clear procedures for CPT-4 coding.\n"
	selectionHelp       = "Please confirm the codes by typing the corresponding numbers and letters (e.g., '1a, 2c, 3b' for diagnoses and '1B, 2A' for procedures (Case sensitive)). Or type 'none' if none of the suggested codes are appropriate."
	noneSelected        = "No problem. I'll generate a claim form without any coding. Would you like to provide alternative codes manually?"
	selectionsConfirmed = "Thank you for confirming the codes. I'll now generate a claim form with the selected codes. Please wait..."
	selectionsUnclear   = "I'm having trouble understanding your code selections. Please use the format '1a, 2b' for diagnoses and procedures. For example, '1a, 2c' means you want the first code (a) for diagnosis 1 and the third code (c) for diagnosis 2."
	claimPreview        = "I've generated a CMS-1500 claim form and saved it as '%s'. Here's a preview of the claim details:\n\n%s\n\nWould you like to add any additional information to the claim? For example:\n- Service date\n- Place of service\n- Referring provider\n- NPI number\n- Additional insurance information"

	claimFinalized = "Your claim has been finalized and saved as '%s'. You can download this PDF file for submission."
	claimUpdated   = "I've updated the claim form with the additional information and saved it as '%s'. Would you like to add any other details, or shall we finalize the claim?"
	summaryDone    = "I've processed all the information and generated a claim form saved as '%s'. Would you like to review the claim details or make any adjustments?"

	postClaimMenu = "What would you like to do next?\n1. Start a new patient case\n2. Add or modify diagnoses or procedures\n3. Look up ICD-10 or CPT-4 code meanings\n4. Learn about medical coding"
	newCase       = "Let's start a new patient case. Please provide the essential patient information: Full name, Date of birth, Gender, Insurance provider, Insurance ID/policy number."
	updateCodes   = "Please provide the updated diagnoses or procedures."
	lookupPrompt  = "Please enter the ICD-10 or CPT-4 code(s) you want to look up (separated by commas if multiple)."
	learnPrompt   = "What would you like to learn about medical coding? (ICD-10, CPT-4, claim forms, etc.)"
	invalidMenu   = "Please choose a valid option from the menu (1-4)."
	noCodesGiven  = "I didn't see any codes to look up."

	documentMissing   = "I've extracted information from your document, but I still need the following essential details: %s. Please provide these missing pieces of information."
	documentProcessed = "I've extracted the information from your document. Now, I'll process the diagnoses and procedures to find the appropriate codes."
	documentUnclear   = "I had trouble processing the information from your document. Please provide the information manually or try with a different document."
	documentFailed    = "Error processing document: %v"

	emptyInput    = "I didn't catch that. Could you please repeat?"
	goodbye       = "Thank you for using the Medical Coding Assistant. Goodbye!"
	generateError = "I apologize, but I encountered an error: %v. Please try again."
	turnError     = "Sorry, I encountered an error. Let's continue."
)

// Keyword sets recognized from user input.
var (
	exitWords = []string{"exit", "quit", "bye"}

	guidedChoices = []string{"1", "guided", "step by step"}
	summaryChoice = []string{"2", "summary", "all at once"}
	uploadChoices = []string{"3", "upload", "document", "pdf", "jpg", "jpeg"}

	newCaseChoices = []string{"1", "start", "new patient", "new case"}
	modifyChoices  = []string{"2", "add", "modify", "diagnoses", "procedures"}
	lookupChoices  = []string{"3", "review", "lookup", "look up", "codes", "icd-10", "cpt-4", "meaning", "meanings"}
	learnChoices   = []string{"4", "learn", "about", "medical coding"}

	finalizePhrases = []string{
		"no", "done", "complete", "finished", "that's all", "finalize", "finalise",
		"good job", "looks good", "all set", "perfect", "submit", "ok", "okay",
		"go ahead", "ready", "proceed", "confirm", "yes", "save",
	}
)
