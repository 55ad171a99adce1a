package taxonomy

// Built-in vocabulary content. Category order is load-bearing: it fixes the
// bit positions declared in the types package, so new categories go at the
// end and existing ones never move.

const (
	ExamVocabularyName  = "exam_categories"
	OrganVocabularyName = "organ_clusters"
)

func DefaultExamCategories() []Category {
	return []Category{
		{Name: "CT Scans", Terms: []string{
			"ct", "ct angiography", "ct enterography", "ct high resolution",
			"ct colonography", "ct venography", "ct maxillofacial",
			"ct pancreatitis protocol", "ct retroperitoneal",
			"ct angiography retroperitoneum", "ct retroperitoneal space",
			"ct retroperitineal space", "ct pancreas protoco", "ct enteroclysis",
			"ct angiography perfusion", "ct angiography aortography",
			"ct arteriography", "ct artrography", "computed tomography ct scan",
			"high resolution ct scan", "ct, x-ray", "ct, ct urography", "ct, xray",
		}},
		{Name: "MRI", Terms: []string{
			"mri", "mri enterography", "mri angiography",
			"mri brain and mr angiography", "cardiac mri", "pelvic mri",
			"mrcp", "mrv",
		}},
		{Name: "Ultrasound and Doppler Studies", Terms: []string{
			"ultrasound", "doppler ultrasound", "carotid duplex ultrasound",
			"pelvic ultrasound", "arterial/venous duplex ultrasound",
			"duplex ultrasound",
		}},
		{Name: "Radiography and X-Ray", Terms: []string{
			"xray", "mammogram", "mammography", "radiography", "dental ct scan",
			"barium swallow study", "x-ray",
		}},
		{Name: "Nuclear Medicine", Terms: []string{
			"petct", "nuclear bone scan", "bone scan", "whole body bone scan",
			"pet scan", "dexa scan",
		}},
		{Name: "Invasive and Interventional Procedures", Terms: []string{
			"cervical nerve root block", "lumbar nerve root block",
			"pudendal nerve root block", "catheter", "biopsy", "colonoscopy",
			"retrograde pyelogram", "esophagography", "cystoscopy", "cystography",
			"esophagogastroduodenoscopy", "epidural steroid injection",
		}},
		{Name: "Cardiovascular Specific Exams", Terms: []string{
			"echocardiogram", "stress test", "coronary angiography",
			"stress echocardiogram",
		}},
		{Name: "Health Check-ups and Other Exams", Terms: []string{
			"general health check-up", "general physical exam",
			"complete blood count", "general check-up", "physical examination",
			"comprehensive metabolic panel", "complete body scan", "check-up",
			"general check up",
		}},
	}
}

func DefaultOrganClusters() []Category {
	return []Category{
		{Name: "head", Terms: []string{
			"head", "cranial", "skull", "brain", "cerebral", "facial", "sinus",
			"paranasal sinuses", "temporal bone", "face", "orbit",
			"temporomandibular joints", "maxilla", "sinuses", "mandible",
			"pituitary gland", "maxillofacial area", "maxillofacial",
			"nasopharynx", "salivary glands", "maxillofacial region",
			"mouth area", "tongue", "scalp", "pituitary", "eye", "intracranial",
			"ear", "temporomandibular joint",
		}},
		{Name: "neck", Terms: []string{
			"neck", "cervical", "throat", "nuchal", "larynx", "esophagus",
			"carotid arteries", "carotid", "parotid gland", "thyroid",
		}},
		{Name: "thorax", Terms: []string{
			"thorax", "chest", "thoracic", "pulmonary", "heart", "cardiac",
			"breast", "mediastinum", "aorta", "aortic", "coronary", "coronaries",
			"aorta branches", "sternoclavicular joint", "breasts", "trachea",
			"lung", "lungs", "clavicula", "scapula bone", "joint sternoclavicular",
			"subclavian artery", "coronary arteries",
		}},
		{Name: "abdomen_pelvis", Terms: []string{
			"abdomen", "abdominal", "stomach", "intestinal", "gastrointestinal",
			"liver", "pancreas", "spleen", "small bowel", "colon",
			"colonography colon", "gallbladder", "kidney", "kidneys",
			"urinary organs", "biliary tract", "biliary system", "renal",
			"adrenal", "adrenal gland", "adrenal glands", "pelvis", "pelvic",
			"hip", "inguinal", "pubic", "iliac vein", "urinary bladder",
			"urinary tract", "prostate", "uterus", "uterus and ovaries",
		}},
		{Name: "upper_extremities", Terms: []string{
			"upper", "arm", "shoulder", "elbow", "wrist", "hand", "scapula",
			"clavicle", "humerus", "right humerus", "ulna left", "forearm",
			"left forearm", "finger", "brachial plexus", "right thumb",
		}},
		{Name: "lower_extremities", Terms: []string{
			"lower", "leg", "knee", "knees", "foot", "thigh", "tibia", "femur",
			"calcaneus", "popliteal artery", "knees bilateral", "right malleolus",
			"femoral nerve left", "lower extremities", "iliofemoral arteries",
			"ankle",
		}},
		{Name: "spine", Terms: []string{
			"spine", "vertebral", "lumbar", "sacral", "spinal canal",
			"spinal cord", "spinal", "thoracic spine",
		}},
		{Name: "skeletal", Terms: []string{
			"joint", "bone", "bones", "skeletal", "skeleton", "extremities",
			"musculoskeletal", "musculoskeletal system",
		}},
		{Name: "lymphatic", Terms: []string{
			"lymph nodes", "lymphatic system",
		}},
		{Name: "body", Terms: []string{
			"whole body", "body", "full body", "various organs",
			"multiple organs", "extremities", "multiple organ systems",
			"muscular system", "skin", "limbs", "blood", "peripheral",
			"endocrine system", "muscles", "vascular region", "vascular system",
			"arterial system",
		}},
	}
}

// DefaultContrastVariants maps stray-space spellings to canonical phrases.
// The keys keep their leading or trailing space on purpose.
func DefaultContrastVariants() map[string]string {
	return map[string]string{
		"with iv contrast ":            "with iv contrast",
		"without iv contrast ":         "without iv contrast",
		" with iv contrast":            "with iv contrast",
		" with or without iv contrast": "with or without iv contrast",
		" without iv contrast":         "without iv contrast",
		"with or without iv contrast ": "with or without iv contrast",
	}
}
