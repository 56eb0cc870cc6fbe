package style

const (
	ieeeLiu      = `[1] G. Liu, K. Y. Lee, and H. F. Jordan, "TDM and TWDM de Bruijn networks and shufflenets," IEEE Trans. Comp., vol. 46, pp. 695-701, Jun. 1997.`
	ieeeKaczorek = `[2] T. Kaczorek, "Minimum energy control of fractional positive electrical circuits with bounded inputs," Circuits Syst. Signal Process., vol. 35, no. 6, pp. 1815-1829, 2016.`
	ieeeInverted = `[3] Liu, G., Lee, K. Y., and Jordan, H. F., "TDM and TWDM de Bruijn networks and shufflenets," IEEE Trans. Comp., vol. 46, no. 6, pp. 695-701, 1997, doi: 10.1109/12.589235.`

	vancouverHalpern = `1. Halpern SD, Ubel PA, Caplan AL. Solid-organ transplantation in HIV-infected patients. N Engl J Med. 2002 Jul 25;347(4):284-7.`
	vancouverRose    = `2. Rose ME, Huerbin MB, Melick J, Marion DW, Palmer AM, Schiding JK, et al. Regulation of interstitial excitatory amino acid concentrations after cortical contusion injury. Brain Res. 2002;935(1-2):40-6.`
	vancouverLoose   = `Smith J, Doe A. Outcomes of minimally invasive surgery. Ann Surg 2019;270:45-52.`

	apaGrady = `Grady, J. S., Her, M., Moreno, G., Perez, C., & Yelinek, J. (2019). Emotions in storybooks: A comparison of storybooks that represent ethnic and racial groups in the United States. Psychology of Popular Media Culture, 8(3), 207-217. https://doi.org/10.1037/ppm0000185`
	apaSmith = `Smith, J., & Doe, A. (2020). Machine learning in healthcare. Nature Medicine, 26(3), 309-316.`
	apaGroup = `World Health Organization. (2019, March 5). Global action plan on physical activity 2018-2030: More active people for a healthier world. World Health Organization. https://apps.who.int/iris/handle/10665/272722`

	harvardBlack = `Black, J. and Barnes, J.L. (2015) 'Fiction and social cognition: The effect of viewing award-winning television dramas on theory of mind', Psychology of Aesthetics, Creativity and the Arts, 9(4), pp. 423-429.`
	harvardRBA   = `Smith JA and BC Jones (2009a), 'Housing and the Economy', Journal of Things, 12(3), pp 1-20.`

	chicagoKwon = `Kwon, Hyeyoung. "Inclusion Work: Children of Immigrants Claiming Membership in Everyday Life." American Journal of Sociology 127, no. 6 (2022): 1818-59. https://doi.org/10.1086/720277.`
	chicagoBook = `Smith, John, and Jane Doe. The Book Title. New York: Penguin Press, 2015.`
)
